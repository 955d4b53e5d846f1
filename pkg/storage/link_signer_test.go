package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLinkSignerRoundTrip(t *testing.T) {
	signer := NewLinkSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("rep-1", "slips/reprimand-rep-1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	docID, name, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "rep-1", docID)
	require.Equal(t, "slips/reprimand-rep-1.pdf", name)
}

func TestLinkSignerExpired(t *testing.T) {
	signer := NewLinkSigner("secret", time.Millisecond*10)
	token, _, err := signer.Sign("rep-1", "slips/reprimand-rep-1.pdf")
	require.NoError(t, err)
	time.Sleep(time.Millisecond * 20)

	_, _, err = signer.Verify(token)
	require.Error(t, err)
}

func TestLinkSignerRejectsTampering(t *testing.T) {
	signer := NewLinkSigner("secret", time.Hour)
	token, _, err := signer.Sign("rep-1", "slips/reprimand-rep-1.pdf")
	require.NoError(t, err)

	_, _, err = signer.Verify(token + "a")
	require.Error(t, err)

	other := NewLinkSigner("different", time.Hour)
	_, _, err = other.Verify(token)
	require.Error(t, err)
}

func TestArchiveSaveOpenPurge(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("slips/reprimand-1.pdf", []byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.Equal(t, "slips/reprimand-1.pdf", name)

	file, err := archive.Open(name)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	purged, err := archive.Purge(0)
	require.NoError(t, err)
	require.Contains(t, purged, name)

	_, err = archive.Open(name)
	require.Error(t, err)
}

func TestArchiveRejectsEscapingNames(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../outside.pdf", "slips/../../outside.pdf", "/etc/passwd"} {
		_, err := archive.Save(name, []byte("x"))
		require.Error(t, err, name)
		_, err = archive.Open(name)
		require.Error(t, err, name)
	}

	// Inner ".." segments that stay inside the archive are fine.
	name, err := archive.Save("slips/sub/../reprimand-2.pdf", []byte("x"))
	require.NoError(t, err)
	file, err := archive.Open(name)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}
