package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDateNumericFrench(t *testing.T) {
	assert.Equal(t, "2024-03-15", ParseDate("Date : 15/03/2024"))
	assert.Equal(t, "2024-03-15", ParseDate("15-03-2024"))
	assert.Equal(t, "2024-03-15", ParseDate("15.03.24"))
}

func TestParseDateISO(t *testing.T) {
	assert.Equal(t, "2024-03-15", ParseDate("Émise le 2024-03-15"))
}

func TestParseDateTextualFrench(t *testing.T) {
	assert.Equal(t, "2024-03-15", ParseDate("Paris, le 15 mars 2024"))
	assert.Equal(t, "2023-07-01", ParseDate("le 1er juillet 2023"))
	assert.Equal(t, "2024-02-10", ParseDate("10 févr. 2024"))
}

func TestParseDatePrefersDateNearFacture(t *testing.T) {
	text := "Commande du 02/01/2024 ... Facture du 15/03/2024"
	assert.Equal(t, "2024-03-15", ParseDate(text))
}

func TestParseDatePicksMostRecent(t *testing.T) {
	// Without a labeled date, the most recent one wins: order and delivery
	// dates precede the invoice date.
	text := "Livraison 02/01/2024\nEdition 15/03/2024"
	assert.Equal(t, "2024-03-15", ParseDate(text))
}

func TestParseDateRejectsImplausible(t *testing.T) {
	assert.Equal(t, "", ParseDate("31/02/2024"))
	assert.Equal(t, "", ParseDate("15/03/1889"))
	assert.Equal(t, "", ParseDate("pas de date"))
}
