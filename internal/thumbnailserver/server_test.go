package thumbnailserver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestURLForJoinsWithoutDoubleSlash(t *testing.T) {
	require.Equal(t, "http://host/a.png", URLFor("http://host", "a.png"))
	require.Equal(t, "http://host/a.png", URLFor("http://host/", "a.png"))
}
