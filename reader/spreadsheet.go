package reader

import (
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
)

const (
	timeMarker = "Time:"

	// biolector rows: well in column 0, channel in column 3, readings from column 4
	wellCol    = 0
	channelCol = 3
	firstValue = 4
)

// ReadXLSGrid returns the cells of the first sheet of a legacy .xls workbook.
func ReadXLSGrid(path string) ([][]string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrorUnknownFormat, path, err)
	}
	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: %s has no sheet", common.ErrorUnknownFormat, path)
	}

	grid := make([][]string, 0, int(sheet.MaxRow)+1)
	for rowID := 0; rowID <= int(sheet.MaxRow); rowID++ {
		row := sheet.Row(rowID)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for colID := 0; colID <= row.LastCol(); colID++ {
			cells = append(cells, row.Col(colID))
		}
		grid = append(grid, trimRight(cells))
	}
	return grid, nil
}

// ReadXLSXGrid returns the cells of the first sheet of an .xlsx workbook.
func ReadXLSXGrid(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnknownFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheet", common.ErrorUnknownFormat)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnknownFormat, err)
	}
	for i := range rows {
		rows[i] = trimRight(rows[i])
	}
	return rows, nil
}

// ParseBiolectorGrid reads the rows below the one holding the "Time:" marker. The cells
// after the marker are the sample times, each later row is one well and channel.
func ParseBiolectorGrid(grid [][]string, kind Kind, origin string) ([]model.Series, error) {
	timeRow := -1
	var times []float64
	for i, row := range grid {
		idx := indexOf(row, timeMarker)
		if idx < 0 {
			continue
		}
		values, err := parseFloats(row[idx+1:])
		if err != nil {
			return nil, fmt.Errorf("time row %d: %w", i+1, err)
		}
		timeRow, times = i, values
		break
	}
	if timeRow < 0 {
		return nil, fmt.Errorf("%w: no %q row in %s", common.ErrorUnknownFormat, timeMarker, origin)
	}

	var (
		res  []model.Series
		errs error
	)
	for i := timeRow + 1; i < len(grid); i++ {
		row := grid[i]
		if isBlank(row) {
			continue
		}
		if len(row) <= firstValue {
			errs = multierr.Append(errs, fmt.Errorf("%w: row %d has %d cells", common.ErrorUnknownFormat, i+1, len(row)))
			continue
		}
		values, err := parseFloats(row[firstValue:])
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}

		name := strings.TrimSpace(row[wellCol]) + "_" + strings.TrimSpace(row[channelCol])
		lbs := labels(name, origin, kind)
		if kind == KindPlate {
			well, err := ParseWellName(name)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("row %d: %w", i+1, err))
				continue
			}
			lbs[model.LabelWell] = well.Well()
			lbs[model.LabelChannel] = well.Channel
		}

		s, err := model.NewSeries(times, values, lbs)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: row %d: %v", common.ErrorInvalidValue, i+1, err))
			continue
		}
		res = append(res, s)
	}
	if errs != nil {
		return nil, errs
	}
	return res, nil
}

func indexOf(row []string, cell string) int {
	for i, c := range row {
		if strings.TrimSpace(c) == cell {
			return i
		}
	}
	return -1
}

func trimRight(cells []string) []string {
	end := len(cells)
	for end > 0 && strings.TrimSpace(cells[end-1]) == "" {
		end--
	}
	return cells[:end]
}
