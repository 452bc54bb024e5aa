package ai

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

// The substitution knowledge base is a plain CSV of product rows
// (name, composition, description, source URL). It is reference data for
// prompt assembly only; nothing in it is mutated at runtime.

var urlPattern = regexp.MustCompile(`(?i)https?:[^\s,"]+`)

// LoadDataset reads the knowledge CSV into trimmed, non-empty lines.
// A missing file is not an error: the agent falls back to general
// knowledge with an empty context.
func LoadDataset(path string) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func extractURL(line string) string {
	return urlPattern.FindString(line)
}

// buildSourceMap maps normalized product names to their dataset URLs so
// recommendations taken from the dataset can cite where they came from.
func buildSourceMap(lines []string) map[string]string {
	m := make(map[string]string)
	for _, l := range lines {
		name := strings.TrimSpace(strings.SplitN(l, ",", 2)[0])
		if name == "" {
			continue
		}
		if url := extractURL(l); url != "" {
			m[normalizeName(name)] = url
		}
	}
	return m
}

// shouldExcludeRecommendation drops recommendations that are just the
// input product again (any variant of the same name).
func shouldExcludeRecommendation(recName, inputName string) bool {
	inputNorm := normalizeName(inputName)
	if len(inputNorm) < 4 {
		return false
	}
	return strings.Contains(normalizeName(recName), inputNorm)
}

// relevantContext scores each dataset line by term overlap with the
// query and returns the best matches up to maxChars. The full dataset
// is far too large to put into one prompt.
func relevantContext(dataset []string, query string, maxChars int) string {
	if query == "" {
		return strings.Join(head(dataset, 20), "\n")
	}

	query = strings.ToLower(query)
	var terms []string
	for _, t := range strings.Fields(query) {
		if len(t) > 2 {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return strings.Join(head(dataset, 50), "\n")
	}

	type scoredLine struct {
		line  string
		score int
	}
	scored := make([]scoredLine, 0, len(dataset))
	for _, line := range dataset {
		lower := strings.ToLower(line)
		score := 0
		if strings.Contains(lower, query) {
			score += 100 // exact phrase beats term overlap
		}
		for _, term := range terms {
			if strings.Contains(lower, term) {
				score += 10
			}
		}
		scored = append(scored, scoredLine{line: line, score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	selected := scored
	var matches []scoredLine
	for _, s := range scored {
		if s.score > 0 {
			matches = append(matches, s)
		}
	}
	if len(matches) > 0 {
		selected = matches
	} else if len(selected) > 50 {
		selected = selected[:50]
	}

	var result []string
	chars := 0
	for _, s := range selected {
		if chars+len(s.line) > maxChars {
			break
		}
		result = append(result, s.line)
		chars += len(s.line)
	}
	if len(result) == 0 {
		return strings.Join(head(dataset, 20), "\n")
	}
	return strings.Join(result, "\n")
}

func head(lines []string, n int) []string {
	if len(lines) < n {
		return lines
	}
	return lines[:n]
}
