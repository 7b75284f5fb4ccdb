package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"coverTonic/artwork"
)

var trackNumberPrefix = regexp.MustCompile(`(?i)^[0-9]{1,3}[-_. ]+`)

// DeriveTitleFromFilename turns "03 - Some_Title.mp3" into "Some Title".
func DeriveTitleFromFilename(filePath string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	base = trackNumberPrefix.ReplaceAllString(base, "")
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	fields := strings.Fields(base)
	if len(fields) == 0 {
		return base
	}
	return strings.Join(fields, " ")
}

func ValidateMP3File(filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}

	if !strings.EqualFold(filepath.Ext(filePath), ".mp3") {
		return fmt.Errorf("file is not an MP3: %s", filePath)
	}

	return nil
}

// Entity is one line of an entity list file.
type Entity struct {
	Class artwork.EntityClass
	ID    string
	Name  string
}

func (e Entity) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return artwork.KeyFor(e.Class, e.ID).String()
}

// ReadEntityList reads tab-separated "class<TAB>id[<TAB>name]" lines.
// Blank lines and lines starting with # are skipped. An empty id is kept;
// it resolves to no artwork.
func ReadEntityList(filePath string) ([]Entity, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseEntityList(f)
}

func ParseEntityList(r io.Reader) ([]Entity, error) {
	var entities []Entity
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(strings.TrimSpace(text), "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected class and id separated by a tab", line)
		}
		class, err := artwork.ParseEntityClass(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e := Entity{Class: class, ID: strings.TrimSpace(fields[1])}
		if len(fields) > 2 {
			e.Name = strings.TrimSpace(fields[2])
		}
		entities = append(entities, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entities, nil
}
