package reader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const sniffSize = 512

// DetectKind infers the kind of a data file from its extension and, for .txt files, its
// encoding.
func DetectKind(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return detectKind(path, head[:n])
}

// Load reads every series in path. An empty kind is detected from the file. All returned
// series pass model.Series.Validate.
func Load(ctx context.Context, path string, kind Kind) ([]model.Series, error) {
	logger := utils.GetLogger(ctx)

	if kind == "" {
		detected, err := DetectKind(path)
		if err != nil {
			return nil, err
		}
		kind = detected
	}

	series, err := load(path, kind)
	if err != nil {
		logger.Error("load failed", zap.String("path", path), zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	var errs error
	for i := range series {
		if err := series[i].Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %v", common.ErrorInvalidValue, series[i].Name(), err))
		}
	}
	if errs != nil {
		return nil, errs
	}

	logger.Info("loaded series", zap.String("path", path), zap.String("kind", string(kind)),
		zap.Int("count", len(series)))
	return series, nil
}

func load(path string, kind Kind) ([]model.Series, error) {
	base := filepath.Base(path)

	switch kind {
	case KindBiolector, KindPlate:
		var (
			grid [][]string
			err  error
		)
		if strings.EqualFold(filepath.Ext(path), ".xls") {
			grid, err = ReadXLSGrid(path)
		} else {
			grid, err = readXLSXFile(path)
		}
		if err != nil {
			return nil, err
		}
		return ParseBiolectorGrid(grid, kind, base)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch kind {
	case KindGrowth:
		s, err := ReadGrowthCSV(f, base)
		if err != nil {
			return nil, err
		}
		return []model.Series{s}, nil
	case KindBioreactor:
		return ReadBioreactor(f, base)
	case KindQPCR:
		return ReadQPCR(f, base)
	}
	return nil, fmt.Errorf("%w: kind %q", common.ErrorUnknownFormat, kind)
}

func readXLSXFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadXLSXGrid(f)
}
