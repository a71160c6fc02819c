package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	testCases := []struct {
		name          string
		url           string
		expectedOwner string
		expectedRepo  string
		expectError   bool
	}{
		{"https URL", "https://github.com/golang/go", "golang", "go", false},
		{"https with .git suffix", "https://github.com/golang/go.git", "golang", "go", false},
		{"trailing slash", "https://github.com/golang/go/", "golang", "go", false},
		{"http URL", "http://github.com/golang/go", "golang", "go", false},
		{"ssh URL", "git@github.com:golang/go.git", "golang", "go", false},
		{"bare host", "github.com/golang/go", "golang", "go", false},
		{"surrounding whitespace", "  https://github.com/golang/go  ", "golang", "go", false},
		{"missing repo", "https://github.com/golang", "", "", true},
		{"wrong host", "https://gitlab.com/golang/go", "", "", true},
		{"empty", "", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			owner, repo, err := ParseRepoURL(tc.url)

			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedOwner, owner)
			assert.Equal(t, tc.expectedRepo, repo)
		})
	}
}
