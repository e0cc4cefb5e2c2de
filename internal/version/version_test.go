package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "relsync/"+Get().Version, UserAgent())
}

func TestInfoString(t *testing.T) {
	s := Info{Version: "1.0.0", Commit: "abc", BuildAt: "today"}.String()
	assert.True(t, strings.HasPrefix(s, "1.0.0\n"))
	assert.Contains(t, s, "Commit: abc")
	assert.Contains(t, s, "Build At: today")
}
