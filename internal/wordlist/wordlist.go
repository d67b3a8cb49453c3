package wordlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const paragraphPrefix = ">"

// LoadVocabulary reads a custom vocabulary file. Each non-empty line is a word;
// lines starting with ">" are boss paragraphs; "#" starts a comment line. Words are
// tiered by length (<=3 easy, <=6 medium, longer hard). Tiers left empty by the
// file keep the built-in words.
func LoadVocabulary(path string) (Vocabulary, error) {
	file, err := os.Open(path)
	if err != nil {
		return Vocabulary{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only word list.
			_ = cerr
		}
	}()

	var loaded Vocabulary
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, paragraphPrefix) {
			text, ok := NormalizeParagraph(strings.TrimPrefix(line, paragraphPrefix))
			if !ok {
				return Vocabulary{}, fmt.Errorf("line %d: paragraph must contain letters and spaces only", lineNo)
			}
			loaded.Paragraphs = append(loaded.Paragraphs, text)
			continue
		}
		word, ok := NormalizeWord(line)
		if !ok {
			return Vocabulary{}, fmt.Errorf("line %d: %q is not a plain word", lineNo, line)
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		switch n := len(word); {
		case n <= 3:
			loaded.Easy = append(loaded.Easy, word)
		case n <= 6:
			loaded.Medium = append(loaded.Medium, word)
		default:
			loaded.Hard = append(loaded.Hard, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return Vocabulary{}, err
	}
	if len(seen) == 0 && len(loaded.Paragraphs) == 0 {
		return Vocabulary{}, fmt.Errorf("word list is empty")
	}

	def := Default()
	if len(loaded.Easy) == 0 {
		loaded.Easy = def.Easy
	}
	if len(loaded.Medium) == 0 {
		loaded.Medium = def.Medium
	}
	if len(loaded.Hard) == 0 {
		loaded.Hard = def.Hard
	}
	if len(loaded.Paragraphs) == 0 {
		loaded.Paragraphs = def.Paragraphs
	}
	return loaded, nil
}
