package tagwriter

import (
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/grantoesterling/rymtag-server/internal/errors"
	"github.com/grantoesterling/rymtag-server/internal/tags"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeMinimalFLAC creates a FLAC file with just a STREAMINFO block and no
// audio frames, which is enough for metadata round-trips.
func writeMinimalFLAC(t *testing.T, path string) {
	t.Helper()

	buf := []byte("fLaC")
	header := make([]byte, 4)
	// Last-metadata-block flag set, block type 0 (STREAMINFO), length 34.
	binary.BigEndian.PutUint32(header, 0x80000000|34)
	buf = append(buf, header...)
	buf = append(buf, make([]byte, 34)...)

	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func writeEmptyMP3(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()
	tag.SetTitle("Placeholder")
	require.NoError(t, tag.Save())
}

func sampleResolved() tags.Resolved {
	return tags.Resolved{
		Genres:          []string{"Ambient", "Drone"},
		SecondaryGenres: []string{"Dark Ambient"},
		Descriptors:     []string{"atmospheric", "cold"},
		Groupings:       []string{"Electronic"},
	}
}

func readVorbisField(t *testing.T, path, field string) []string {
	t.Helper()

	f, err := flac.ParseFile(path)
	require.NoError(t, err)

	for _, meta := range f.Meta {
		if meta.Type == flac.VorbisComment {
			cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			require.NoError(t, err)
			values, err := cmts.Get(field)
			require.NoError(t, err)
			return values
		}
	}
	return nil
}

func TestWriteFLACArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeMinimalFLAC(t, path)

	w := New(testLogger())
	require.NoError(t, w.Write(path, sampleResolved()))

	assert.Equal(t, []string{"Ambient", "Drone"}, readVorbisField(t, path, "GENRE"))
	assert.Equal(t, []string{"Dark Ambient"}, readVorbisField(t, path, "SECONDARY_GENRE"))
	assert.Equal(t, []string{"atmospheric", "cold"}, readVorbisField(t, path, "DESCRIPTORS"))
	assert.Equal(t, []string{"Electronic"}, readVorbisField(t, path, "GROUPING"))
}

func TestWriteFLACReplacesExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeMinimalFLAC(t, path)

	w := New(testLogger())
	require.NoError(t, w.Write(path, tags.Resolved{Genres: []string{"Old Genre"}}))
	require.NoError(t, w.Write(path, sampleResolved()))

	// Old values are replaced, not appended to.
	assert.Equal(t, []string{"Ambient", "Drone"}, readVorbisField(t, path, "GENRE"))
}

func TestWriteFLACPreservesOtherComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.flac")
	writeMinimalFLAC(t, path)

	// Seed an unrelated comment.
	f, err := flac.ParseFile(path)
	require.NoError(t, err)
	cmts := flacvorbis.New()
	require.NoError(t, cmts.Add(flacvorbis.FIELD_TITLE, "Boring Angel"))
	cmtsMeta := cmts.Marshal()
	f.Meta = append(f.Meta, &cmtsMeta)
	require.NoError(t, f.Save(path))

	w := New(testLogger())
	require.NoError(t, w.Write(path, sampleResolved()))

	assert.Equal(t, []string{"Boring Angel"}, readVorbisField(t, path, flacvorbis.FIELD_TITLE))
	assert.Equal(t, []string{"Ambient", "Drone"}, readVorbisField(t, path, "GENRE"))
}

func TestWriteMP3Frames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	writeEmptyMP3(t, path)

	w := New(testLogger())
	require.NoError(t, w.Write(path, sampleResolved()))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Ambient; Drone", tag.Genre())
	assert.Equal(t, "Placeholder", tag.Title())

	grouping := tag.GetTextFrame("TIT1")
	assert.Equal(t, "Electronic", grouping.Text)

	userFrames := map[string]string{}
	for _, f := range tag.GetFrames(tag.CommonID("User defined text information frame")) {
		udf, ok := f.(id3v2.UserDefinedTextFrame)
		require.True(t, ok)
		userFrames[udf.Description] = udf.Value
	}
	assert.Equal(t, "Dark Ambient", userFrames["Secondary Genre"])
	assert.Equal(t, "atmospheric; cold", userFrames["Descriptors"])
}

func TestWriteMP3EmptyListsRemoveFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	writeEmptyMP3(t, path)

	w := New(testLogger())
	require.NoError(t, w.Write(path, sampleResolved()))
	require.NoError(t, w.Write(path, tags.Resolved{Genres: []string{"Ambient"}}))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Ambient", tag.Genre())
	assert.Empty(t, tag.GetTextFrame("TIT1").Text)
	assert.Empty(t, tag.GetFrames(tag.CommonID("User defined text information frame")))
}

func TestWriteUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.ogg")
	require.NoError(t, os.WriteFile(path, []byte("ogg"), 0o644))

	w := New(testLogger())
	err := w.Write(path, sampleResolved())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnsupported))
}

func TestWriteMalformedFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.flac")
	require.NoError(t, os.WriteFile(path, []byte("not a flac"), 0o644))

	w := New(testLogger())
	assert.Error(t, w.Write(path, sampleResolved()))
}
