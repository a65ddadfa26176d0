package reader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
)

// WellName is a parsed plate trace name such as "B12_Biomass".
type WellName struct {
	Row     string
	Column  int
	Channel string
}

func (w WellName) Well() string {
	return w.Row + strconv.Itoa(w.Column)
}

func (w WellName) String() string {
	return w.Well() + "_" + w.Channel
}

func ParseWellName(name string) (WellName, error) {
	cell, channel, ok := strings.Cut(name, "_")
	if !ok || len(cell) < 2 || channel == "" || strings.Contains(channel, "_") {
		return WellName{}, fmt.Errorf("%w: well name %q", common.ErrorInvalidValue, name)
	}
	row := cell[:1]
	if row < "A" || row > "Z" {
		return WellName{}, fmt.Errorf("%w: well row in %q", common.ErrorInvalidValue, name)
	}
	column, err := strconv.Atoi(cell[1:])
	if err != nil || column < 1 {
		return WellName{}, fmt.Errorf("%w: well column in %q", common.ErrorInvalidValue, name)
	}
	return WellName{Row: row, Column: column, Channel: channel}, nil
}

// Plate indexes plate traces by well and channel.
type Plate struct {
	Rows     []string
	Columns  []int
	Channels []string
	index    map[WellName]int
}

// NewPlate indexes series by their well and channel labels. The index refers to the
// position in series.
func NewPlate(series []model.Series) (*Plate, error) {
	p := &Plate{index: map[WellName]int{}}
	rows, columns, channels := map[string]bool{}, map[int]bool{}, map[string]bool{}

	for i := range series {
		well, err := ParseWellName(series[i].Label(model.LabelWell) + "_" + series[i].Label(model.LabelChannel))
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", series[i].Name(), err)
		}
		if _, ok := p.index[well]; ok {
			return nil, fmt.Errorf("%w: duplicate well %s", common.ErrorInvalidValue, well)
		}
		p.index[well] = i
		rows[well.Row], columns[well.Column], channels[well.Channel] = true, true, true
	}

	for r := range rows {
		p.Rows = append(p.Rows, r)
	}
	for c := range columns {
		p.Columns = append(p.Columns, c)
	}
	for ch := range channels {
		p.Channels = append(p.Channels, ch)
	}
	sort.Strings(p.Rows)
	sort.Ints(p.Columns)
	sort.Strings(p.Channels)
	return p, nil
}

func (p *Plate) Lookup(row string, column int, channel string) (int, bool) {
	i, ok := p.index[WellName{Row: row, Column: column, Channel: channel}]
	return i, ok
}

// Channel returns the series positions of one channel in row-major well order.
func (p *Plate) Channel(channel string) []int {
	res := []int{}
	for _, r := range p.Rows {
		for _, c := range p.Columns {
			if i, ok := p.Lookup(r, c, channel); ok {
				res = append(res, i)
			}
		}
	}
	return res
}
