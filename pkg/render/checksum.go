package render

import (
	"hash"
	"hash/adler32"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ChecksumAttr is the attribute added to the root tag in buffered mode.
const ChecksumAttr = "data-react-checksum"

// Checksum algorithms.
const (
	ChecksumAdler32 = "adler32"
	ChecksumXXHash  = "xxhash"
)

// Accumulator folds emitted chunks into a running, order-sensitive digest.
type Accumulator interface {
	WriteString(chunk string)
	Sum() uint64
	Reset()
}

// NewAccumulator returns an accumulator for the named algorithm. Unknown
// names fall back to adler32.
func NewAccumulator(algorithm string) Accumulator {
	if algorithm == ChecksumXXHash {
		return &xxhashAccumulator{d: xxhash.New()}
	}
	return &adlerAccumulator{h: adler32.New()}
}

type adlerAccumulator struct {
	h hash.Hash32
}

func (a *adlerAccumulator) WriteString(chunk string) {
	// hash.Hash writes never fail.
	_, _ = a.h.Write([]byte(chunk))
}

func (a *adlerAccumulator) Sum() uint64 { return uint64(a.h.Sum32()) }
func (a *adlerAccumulator) Reset()      { a.h.Reset() }

type xxhashAccumulator struct {
	d *xxhash.Digest
}

func (x *xxhashAccumulator) WriteString(chunk string) {
	_, _ = x.d.WriteString(chunk)
}

func (x *xxhashAccumulator) Sum() uint64 { return x.d.Sum64() }
func (x *xxhashAccumulator) Reset()      { x.d.Reset() }

// AddChecksumToMarkup inserts the checksum attribute into the first tag of
// markup, just before its closing ">" or "/>". Markup that does not start
// with an element tag is returned unchanged.
func AddChecksumToMarkup(markup string, sum uint64) string {
	if len(markup) < 2 || markup[0] != '<' || !isASCIILetter(markup[1]) {
		return markup
	}
	end := strings.IndexByte(markup, '>')
	if end < 0 {
		return markup
	}
	if markup[end-1] == '/' {
		end--
	}

	attr := " " + ChecksumAttr + `="` + strconv.FormatUint(sum, 10) + `"`
	return markup[:end] + attr + markup[end:]
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
