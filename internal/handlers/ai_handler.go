package handlers

import (
	"net/http"
	"os"

	"go-pharma-pos/internal/ai"

	"github.com/gin-gonic/gin"
)

type SubstitutionRequest struct {
	Input string `json:"input" binding:"required"`
}

// --- POST: AI-assisted product substitution lookup ---
func FindSubstitutions(c *gin.Context) {
	var req SubstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Input is required"})
		return
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Substitution lookup is not configured"})
		return
	}
	datasetPath := os.Getenv("KNOWLEDGE_CSV")
	if datasetPath == "" {
		datasetPath = "./knowledge.csv"
	}

	result, err := ai.FindSubstitutes(c.Request.Context(), apiKey, datasetPath, req.Input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch substitutions"})
		return
	}

	c.JSON(http.StatusOK, result)
}
