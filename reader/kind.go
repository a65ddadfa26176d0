package reader

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/uyouii/growthfit/common"
)

type Kind string

const (
	// KindGrowth is a hand-recorded OD log: date,time,...,OD per line.
	KindGrowth Kind = "growth"

	// KindBioreactor is a delimited table: time column then one OD column per vessel.
	KindBioreactor Kind = "bioreactor"

	KindBiolector Kind = "biolector"

	// KindPlate is a biolector export whose wells are named <row><column>_<channel>.
	KindPlate Kind = "plate"

	// KindQPCR is a UTF-16LE, tab separated fluorescence table, one well per row.
	KindQPCR Kind = "qpcr"
)

var allKinds = []Kind{KindGrowth, KindBioreactor, KindBiolector, KindPlate, KindQPCR}

func ParseKind(s string) (Kind, error) {
	for _, k := range allKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: kind %q", common.ErrorUnknownFormat, s)
}

// detectKind guesses the kind from the file name and the first bytes of the file.
func detectKind(name string, head []byte) (Kind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xls", ".xlsx":
		return KindBiolector, nil
	case ".csv":
		return KindGrowth, nil
	case ".txt":
		if isUTF16LE(head) {
			return KindQPCR, nil
		}
		return KindBioreactor, nil
	}
	return "", fmt.Errorf("%w: %s", common.ErrorUnknownFormat, name)
}

// isUTF16LE reports a little-endian BOM, or ASCII text with every second byte zero.
func isUTF16LE(head []byte) bool {
	if bytes.HasPrefix(head, []byte{0xff, 0xfe}) {
		return true
	}
	if len(head) < 2 {
		return false
	}
	for i := 1; i < len(head); i += 2 {
		if head[i] != 0 {
			return false
		}
	}
	return true
}
