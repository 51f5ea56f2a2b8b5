// Package tagwriter writes resolved genre tags into audio files.
//
// FLAC files get true multi-value Vorbis comments (one entry per value) so
// players that understand arrays see each genre separately. MP3 files get
// ID3v2 text frames with semicolon-joined values, plus TXXX frames for the
// fields ID3 has no standard frame for.
package tagwriter

import (
	"log/slog"
	"path/filepath"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"

	domainerrors "github.com/grantoesterling/rymtag-server/internal/errors"
	"github.com/grantoesterling/rymtag-server/internal/tags"
)

// Vorbis comment field names for the resolved tag lists.
const (
	fieldGenre          = "GENRE"
	fieldSecondaryGenre = "SECONDARY_GENRE"
	fieldDescriptors    = "DESCRIPTORS"
	fieldGrouping       = "GROUPING"
)

// Writer applies resolved tags to audio files on disk.
type Writer struct {
	logger *slog.Logger
}

// New creates a tag writer.
func New(logger *slog.Logger) *Writer {
	return &Writer{
		logger: logger,
	}
}

// Write applies the resolved tags to the file at path, dispatching on
// extension. Unsupported formats return an unsupported error so callers can
// count them without aborting a batch.
func (w *Writer) Write(path string, resolved tags.Resolved) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return w.writeFLAC(path, resolved)
	case ".mp3":
		return w.writeMP3(path, resolved)
	default:
		return domainerrors.Unsupportedf("unsupported file format for tag writing: %s", filepath.Ext(path))
	}
}

// writeFLAC replaces the genre-related Vorbis comment fields with one comment
// entry per value, preserving all other comments.
func (w *Writer) writeFLAC(path string, resolved tags.Resolved) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeMalformed, "failed to parse FLAC file %s", path)
	}

	// Find existing vorbis comment block or create a new one.
	var cmts *flacvorbis.MetaDataBlockVorbisComment
	cmtIdx := -1

	for idx, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmts, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return domainerrors.Wrapf(err, domainerrors.CodeMalformed, "failed to parse vorbis comment in %s", path)
			}
			cmtIdx = idx
			break
		}
	}

	if cmts == nil {
		cmts = flacvorbis.New()
	}

	// Drop existing values for the fields we own, then append the new ones.
	cmts.Comments = stripFields(cmts.Comments,
		fieldGenre, fieldSecondaryGenre, fieldDescriptors, fieldGrouping)

	addAll(cmts, fieldGenre, resolved.Genres)
	addAll(cmts, fieldSecondaryGenre, resolved.SecondaryGenres)
	addAll(cmts, fieldDescriptors, resolved.Descriptors)
	addAll(cmts, fieldGrouping, resolved.Groupings)

	cmtsMeta := cmts.Marshal()
	if cmtIdx >= 0 {
		f.Meta[cmtIdx] = &cmtsMeta
	} else {
		f.Meta = append(f.Meta, &cmtsMeta)
	}

	if err := f.Save(path); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "failed to save FLAC file %s", path)
	}

	w.logger.Debug("wrote FLAC tags",
		"path", path,
		"genres", len(resolved.Genres),
		"groupings", len(resolved.Groupings))
	return nil
}

// writeMP3 writes genres to TCON, groupings to TIT1, and the remaining lists
// to TXXX frames, semicolon-joined.
func (w *Writer) writeMP3(path string, resolved tags.Resolved) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeMalformed, "failed to open MP3 file %s", path)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	setOrDeleteFrame(tag, "TCON", joined(resolved.Genres))
	setOrDeleteFrame(tag, "TIT1", joined(resolved.Groupings))
	setUserFrame(tag, "Secondary Genre", joined(resolved.SecondaryGenres))
	setUserFrame(tag, "Descriptors", joined(resolved.Descriptors))

	if err := tag.Save(); err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "failed to save MP3 tags for %s", path)
	}

	w.logger.Debug("wrote MP3 tags",
		"path", path,
		"genres", len(resolved.Genres),
		"groupings", len(resolved.Groupings))
	return nil
}

// joined renders a value list the way ID3 text frames expect.
func joined(values []string) string {
	return strings.Join(values, "; ")
}

// setOrDeleteFrame sets a text frame, or removes it when the value is empty.
func setOrDeleteFrame(tag *id3v2.Tag, frameID, value string) {
	tag.DeleteFrames(frameID)
	if value != "" {
		tag.AddTextFrame(frameID, tag.DefaultEncoding(), value)
	}
}

// setUserFrame sets a TXXX frame keyed by description, or removes it when the
// value is empty.
func setUserFrame(tag *id3v2.Tag, description, value string) {
	frames := tag.GetFrames(tag.CommonID("User defined text information frame"))
	kept := make([]id3v2.Framer, 0, len(frames))
	for _, f := range frames {
		udf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok || udf.Description != description {
			kept = append(kept, f)
		}
	}

	tag.DeleteFrames(tag.CommonID("User defined text information frame"))
	for _, f := range kept {
		tag.AddFrame(tag.CommonID("User defined text information frame"), f)
	}

	if value != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: description,
			Value:       value,
		})
	}
}

// stripFields removes every comment whose field name matches one of the given
// fields, case-insensitively per the Vorbis comment spec.
func stripFields(comments []string, fields ...string) []string {
	owned := make(map[string]bool, len(fields))
	for _, f := range fields {
		owned[strings.ToUpper(f)] = true
	}

	kept := comments[:0]
	for _, c := range comments {
		name, _, found := strings.Cut(c, "=")
		if found && owned[strings.ToUpper(name)] {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// addAll appends one comment entry per value.
func addAll(cmts *flacvorbis.MetaDataBlockVorbisComment, field string, values []string) {
	for _, v := range values {
		// Add only fails on malformed field names, which ours are not.
		_ = cmts.Add(field, v)
	}
}
