package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/facturex/invoice-extractor/client"
	"github.com/facturex/invoice-extractor/config"
	"github.com/facturex/invoice-extractor/handler"
	"github.com/facturex/invoice-extractor/logger"
	"github.com/facturex/invoice-extractor/service"
)

func main() {
	cfg := config.LoadConfig()

	// Tesseract reads this at init; the config default matches v5 layouts.
	os.Setenv("TESSDATA_PREFIX", cfg.TesseractDataPath)

	logg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logg.Sync()

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.OCRLanguages, logg)
	defer tesseractClient.Close()

	pdfProcessor := service.NewPDFProcessor()
	extractionService := service.NewExtractionService(tesseractClient, pdfProcessor, logg)
	invoiceHandler := handler.NewInvoiceHandler(extractionService, logg)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Invoice Extraction",
		})
	})

	api := router.Group("/api/v1")
	{
		invoices := api.Group("/invoices")
		{
			invoices.POST("/extract", invoiceHandler.ExtractInvoice)
		}
	}

	logg.Infof("starting invoice extraction service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logg.Fatalf("failed to start server: %v", err)
	}
}
