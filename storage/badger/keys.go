package badger

import (
	"fmt"

	"github.com/poiesic/ragpipe/core"
)

// Key prefixes for different data types
const (
	pageRecordPrefix = "pagerec"
)

// makePageKey generates a key for a cached page from its URL.
// The key embeds a content hash of the URL rather than the URL itself
// so key length stays bounded.
func makePageKey(url string) []byte {
	return []byte(fmt.Sprintf("%s:%d", pageRecordPrefix, core.IDFromContent(url)))
}
