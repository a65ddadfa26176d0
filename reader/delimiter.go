package reader

import (
	"bytes"

	"github.com/csimplestring/go-csv/detector"
)

var knownDelimiters = []rune{',', '\t', ';'}

// detectDelimiter returns the most likely field delimiter of data. When the detector finds
// nothing usable the most frequent known delimiter of the first line wins, then ','.
func detectDelimiter(data []byte) rune {
	d := detector.New()
	for _, candidate := range d.DetectDelimiter(bytes.NewReader(data), '"') {
		if len(candidate) == 0 {
			continue
		}
		if r := rune(candidate[0]); isKnownDelimiter(r) {
			return r
		}
	}

	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	best, bestCnt := ',', 0
	for _, r := range knownDelimiters {
		if cnt := bytes.Count(firstLine, []byte(string(r))); cnt > bestCnt {
			best, bestCnt = r, cnt
		}
	}
	return best
}

func isKnownDelimiter(r rune) bool {
	for _, known := range knownDelimiters {
		if r == known {
			return true
		}
	}
	return false
}
