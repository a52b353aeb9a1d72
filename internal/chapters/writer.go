package chapters

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"vfrchap/internal/fileutil"
	"vfrchap/internal/logging"
)

// ErrNoChapters reports a document without any chapter.
var ErrNoChapters = errors.New("no chapters to write")

// Rendered holds the bytes of a chapter file and, for multi-edition
// Matroska documents, its tags file.
type Rendered struct {
	Chapters []byte
	Tags     []byte
	// UIDBase is the base UIDs were allocated from; zero for text formats.
	UIDBase uint64
}

// Writer renders documents in one format.
type Writer struct {
	Format Format
	Logger *slog.Logger
}

// NewWriter selects the format from path.
func NewWriter(path string, logger *slog.Logger) Writer {
	return Writer{Format: FormatFromPath(path), Logger: logging.NewComponentLogger(logger, "chapters")}
}

// Render produces the file contents for doc without touching disk. Matroska
// rendering numbers a copy of doc, so the caller's document is unchanged.
func (w Writer) Render(doc Document) (Rendered, error) {
	if len(doc.Editions) == 0 {
		return Rendered{}, ErrNoChapters
	}
	for i, ed := range doc.Editions {
		if len(ed.Chapters) == 0 {
			return Rendered{}, fmt.Errorf("%w: edition %d is empty", ErrNoChapters, i+1)
		}
	}
	var buf bytes.Buffer
	switch w.Format {
	case OGM:
		if err := WriteOGM(&buf, doc.Chapters()); err != nil {
			return Rendered{}, err
		}
		return Rendered{Chapters: buf.Bytes()}, nil
	case X264:
		if err := WriteX264(&buf, doc.Chapters()); err != nil {
			return Rendered{}, err
		}
		return Rendered{Chapters: buf.Bytes()}, nil
	}

	numbered := cloneDocument(doc)
	base := numbered.UIDBase
	if base == 0 {
		base = RandomUIDBase()
		if w.Logger != nil {
			w.Logger.Info("generated chapter uid base", logging.Uint64("uid", base))
		}
	}
	if err := assignUIDs(&numbered, base); err != nil {
		return Rendered{}, fmt.Errorf("uid %d: %w", base, err)
	}
	if err := WriteMKV(&buf, numbered); err != nil {
		return Rendered{}, err
	}
	out := Rendered{Chapters: buf.Bytes(), UIDBase: base}
	if NeedsTags(numbered) {
		var tags bytes.Buffer
		if err := WriteTags(&tags, numbered); err != nil {
			return Rendered{}, err
		}
		out.Tags = tags.Bytes()
	}
	return out, nil
}

// WriteFiles renders doc and saves it to path.
func (w Writer) WriteFiles(path string, doc Document) ([]string, error) {
	rendered, err := w.Render(doc)
	if err != nil {
		return nil, err
	}
	return w.Save(path, rendered)
}

// Save replaces path, plus TagsPath(path) when rendered has tags. It
// returns the paths written.
func (w Writer) Save(path string, rendered Rendered) ([]string, error) {
	if err := fileutil.WriteFileAtomic(path, rendered.Chapters, 0o644); err != nil {
		return nil, fmt.Errorf("write chapters: %w", err)
	}
	written := []string{path}
	if rendered.Tags != nil {
		tagsPath := TagsPath(path)
		if err := fileutil.WriteFileAtomic(tagsPath, rendered.Tags, 0o644); err != nil {
			return written, fmt.Errorf("write chapter tags: %w", err)
		}
		written = append(written, tagsPath)
	}
	if w.Logger != nil {
		w.Logger.Info("chapters written",
			logging.String(logging.FieldOutput, path),
			logging.String("format", w.Format.String()),
			logging.Bool("tags", rendered.Tags != nil),
		)
	}
	return written, nil
}

func cloneDocument(doc Document) Document {
	out := doc
	out.Editions = make([]Edition, len(doc.Editions))
	for i, ed := range doc.Editions {
		ed.Chapters = append([]Chapter(nil), ed.Chapters...)
		out.Editions[i] = ed
	}
	return out
}
