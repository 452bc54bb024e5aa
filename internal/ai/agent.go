package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Recommendation is one suggested substitute product.
type Recommendation struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
}

// SubstitutionResult is the contract with the external model: a list of
// substitutes, a short pharmacist-style advice text, and source URLs for
// anything that came from the local dataset.
type SubstitutionResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Advice          string           `json:"advice"`
	Sources         []string         `json:"sources"`
}

// FindSubstitutes assembles a prompt from the knowledge dataset and asks
// Gemini for substitute products. All intelligence lives on the other
// side of the API call; this side only selects context and parses JSON.
func FindSubstitutes(ctx context.Context, apiKey, datasetPath, input string) (*SubstitutionResult, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	dataset := LoadDataset(datasetPath)
	prompt := buildPrompt(input, relevantContext(dataset, strings.ToLower(input), 50000))

	model := client.GenerativeModel("gemini-2.0-flash-001")
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}

	raw := responseText(resp)
	if raw == "" {
		return nil, errors.New("empty model response")
	}

	var result SubstitutionResult
	if err := json.Unmarshal([]byte(stripMarkdownFences(raw)), &result); err != nil {
		return nil, fmt.Errorf("model returned unparseable JSON: %w", err)
	}

	// Post-process: drop variants of the input product, attach dataset
	// source URLs where the name matches.
	sourceMap := buildSourceMap(dataset)
	filtered := make([]Recommendation, 0, len(result.Recommendations))
	var sources []string
	for _, rec := range result.Recommendations {
		if shouldExcludeRecommendation(rec.Name, input) {
			continue
		}
		if url, ok := sourceMap[normalizeName(rec.Name)]; ok {
			rec.Source = url
			sources = append(sources, url)
		}
		filtered = append(filtered, rec)
	}
	result.Recommendations = filtered
	result.Sources = sources

	return &result, nil
}

func buildPrompt(input, context string) string {
	return "Anda adalah asisten apotek cerdas di Indonesia. Input user: '" + input + "'.\n\n" +
		"TUGAS:\n" +
		"Berikan rekomendasi obat/produk pengganti (substitusi) yang sesuai.\n\n" +
		"SUMBER DATA:\n" +
		"1. PRIORITASKAN data dari DATASET berikut:\n" + context + "\n\n" +
		"2. ATURAN PENGGUNAAN DATASET vs UMUM:\n" +
		"   - PRIORITASKAN data dari DATASET HANYA JIKA RELEVAN (kandungan/indikasi sama dan bisa menggantikan).\n" +
		"   - Jika di dataset TIDAK ADA pengganti yang layak, gunakan PENGETAHUAN UMUM sepenuhnya.\n" +
		"   - Jika hasil dari dataset relevan tapi kurang dari 5, tambahkan dari pengetahuan umum hingga total 5.\n" +
		"   - Rekomendasi pengetahuan umum harus valid dan tersedia di Indonesia.\n\n" +
		"STRATEGI PENCARIAN:\n" +
		"- Analisis kolom 'composition' untuk kandungan aktif yang sama (misal: paracetamol = acetaminophen).\n" +
		"- Analisis kolom 'description' untuk indikasi/kegunaan yang sama.\n" +
		"- Jangan hanya melihat kesamaan nama produk. Pahami konteks medisnya.\n\n" +
		"ATURAN KRUSIAL:\n" +
		"1. Jangan pernah merekomendasikan produk yang SAMA dengan input user, termasuk variannya.\n" +
		"2. Jika rekomendasi diambil dari DATASET, gunakan nama persis seperti di dataset.\n" +
		"3. Format output JSON murni, tanpa markdown:\n" +
		"{\n  \"recommendations\": [ { \"name\": string } ],\n  \"advice\": string,\n  \"sources\": [string]\n}\n" +
		"4. Target: total minimal 5 rekomendasi (dataset + umum).\n"
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return ""
}

// stripMarkdownFences removes a ```json ... ``` wrapper if the model
// ignored the no-markdown instruction.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
