package mp3

import (
	"fmt"

	"github.com/bogem/id3v2"
	"github.com/h2non/filetype"
)

const maxCoverSize = 5 * 1024 * 1024 // 5MB

// Tags is the subset of ID3 metadata used to find a file's cover.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Cover  []byte
}

type TagEditor interface {
	ReadTags(filePath string) (*Tags, error)
	EmbedCover(filePath string, cover []byte) error
}

type tagEditor struct{}

func NewTagEditor() TagEditor {
	return &tagEditor{}
}

func (te *tagEditor) ReadTags(filePath string) (*Tags, error) {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer tag.Close()

	tags := &Tags{
		Title:  tag.Title(),
		Artist: tag.Artist(),
		Album:  tag.Album(),
	}
	for _, f := range tag.GetFrames(tag.CommonID("Attached picture")) {
		if pf, ok := f.(id3v2.PictureFrame); ok && pf.PictureType == id3v2.PTFrontCover {
			tags.Cover = pf.Picture
			break
		}
	}
	return tags, nil
}

// EmbedCover replaces any attached pictures with cover as the front cover.
func (te *tagEditor) EmbedCover(filePath string, cover []byte) error {
	if err := ValidateCover(cover); err != nil {
		return fmt.Errorf("invalid cover: %w", err)
	}

	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer tag.Close()

	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    mimeType(cover),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     cover,
	})

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}

func ValidateCover(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("cover is empty")
	}
	if len(data) > maxCoverSize {
		return fmt.Errorf("cover exceeds %d bytes", maxCoverSize)
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return fmt.Errorf("file is not an image: %s", kind.Extension)
	}
	return nil
}

func mimeType(data []byte) string {
	kind, _ := filetype.Match(data)
	switch kind.Extension {
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
