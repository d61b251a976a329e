// Package pininfo reads the vendor pin-out datasheet, a tab separated text
// file with one section per device package, into per-pin records.
package pininfo

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding/charmap"
)

// Column headers used by the datasheet.
const (
	colBank     = "Bank Number"
	colVREF     = "VREF"
	colFunction = "Pin Name/Function (2)"
	colDQS      = "DQS for X8/X9 "
	colTxRx     = "Dedicated Tx/Rx Channel"

	// packageColumn is the header column that names the package of a section.
	packageColumn = 7
)

// AssignmentPrefix is prepended to datasheet pin names in location
// assignments and in the knowledge tables ("A6" becomes "PIN_A6").
const AssignmentPrefix = "PIN_"

// ErrNoPins is returned when no usable pin is found for the package.
var ErrNoPins = errors.New("pininfo: no pins found")

var pinNameRE = regexp.MustCompile(`^[A-Z]+\d+`)

// ChannelRole is the dedicated differential channel role of a pin.
type ChannelRole int

const (
	// RoleNone marks pins without a dedicated differential channel.
	RoleNone ChannelRole = iota
	// RoleDiffRx marks dedicated differential receiver channels.
	RoleDiffRx
	// RoleDiffTx marks dedicated differential transmitter channels.
	RoleDiffTx
)

// ParseChannelRole maps a "Dedicated Tx/Rx Channel" cell to a role.
func ParseChannelRole(s string) ChannelRole {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "DIFFIO_RX"):
		return RoleDiffRx
	case strings.HasPrefix(s, "DIFFIO_TX"):
		return RoleDiffTx
	default:
		return RoleNone
	}
}

func (r ChannelRole) String() string {
	switch r {
	case RoleDiffRx:
		return "diff-rx"
	case RoleDiffTx:
		return "diff-tx"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r ChannelRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Pin is one datasheet row.
type Pin struct {
	Name        string `json:"name"` // package location, e.g. "A6"
	Bank        string `json:"bank"`
	Function    string `json:"function"`
	TxRxChannel string `json:"txrx_channel,omitempty"`
	DQS         string `json:"dqs,omitempty"`
}

// Role returns the pin's dedicated channel role.
func (p Pin) Role() ChannelRole {
	return ParseChannelRole(p.TxRxChannel)
}

// Table holds the pins of one package.
type Table struct {
	pkg  string
	pins map[string]Pin
}

// Load reads the datasheet at name and keeps the rows of package pkg.
func Load(fsys afero.Fs, name, pkg string, logger log.Logger) (*Table, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("pininfo: read %s: %w", name, err)
	}
	return Parse(bytes.NewReader(data), pkg, logger)
}

// Parse reads an ISO-8859-1 encoded datasheet and keeps the rows of package
// pkg. Power, VREF and non-pin rows are skipped.
func Parse(r io.Reader, pkg string, logger log.Logger) (*Table, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &Table{pkg: pkg, pins: make(map[string]Pin)}

	var cols *columns
	for {
		line, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("pininfo: %w", err)
		}

		if isHeader(line) {
			cols = nil
			if line[packageColumn] == pkg {
				if cols, err = newColumns(line, pkg); err != nil {
					return nil, err
				}
			}
			continue
		}
		if cols == nil {
			continue
		}

		pin, ok := cols.row(line)
		if !ok {
			level.Warn(logger).Log("msg", "unable to parse line", "line", strings.Join(line, "|"))
			continue
		}
		if !pinNameRE.MatchString(pin.Name) || pin.Bank == "" ||
			strings.HasPrefix(pin.Bank, "G") || strings.HasPrefix(pin.Function, "VREF") {
			level.Debug(logger).Log("msg", "pin does not match, skipping", "pin", pin.Name)
			continue
		}
		t.pins[pin.Name] = pin
	}

	if len(t.pins) == 0 {
		return nil, fmt.Errorf("%w for package %s", ErrNoPins, pkg)
	}
	return t, nil
}

func isHeader(line []string) bool {
	return len(line) > packageColumn &&
		line[0] == colBank && line[1] == colVREF && line[2] == colFunction
}

type columns struct {
	bank, function, dqs, txrx, pin int
}

func newColumns(header []string, pkg string) (*columns, error) {
	idx := func(name string) (int, error) {
		for i, h := range header {
			if h == name {
				return i, nil
			}
		}
		return 0, fmt.Errorf("pininfo: package %s header lacks column %q", pkg, name)
	}

	var c columns
	var err error
	for _, f := range []struct {
		dst  *int
		name string
	}{
		{&c.bank, colBank},
		{&c.function, colFunction},
		{&c.dqs, colDQS},
		{&c.txrx, colTxRx},
		{&c.pin, pkg},
	} {
		if *f.dst, err = idx(f.name); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (c *columns) row(line []string) (Pin, bool) {
	need := max(c.bank, c.function, c.dqs, c.txrx, c.pin)
	if len(line) <= need {
		return Pin{}, false
	}
	return Pin{
		Name:        line[c.pin],
		Bank:        line[c.bank],
		Function:    line[c.function],
		TxRxChannel: line[c.txrx],
		DQS:         line[c.dqs],
	}, true
}

// Package returns the package the table was read for.
func (t *Table) Package() string {
	return t.pkg
}

// Pin looks up a pin by datasheet name or assignment name ("A6" or "PIN_A6").
func (t *Table) Pin(name string) (Pin, bool) {
	p, ok := t.pins[strings.TrimPrefix(name, AssignmentPrefix)]
	return p, ok
}

// Role returns the channel role of a pin; unknown pins have RoleNone.
func (t *Table) Role(name string) ChannelRole {
	p, ok := t.Pin(name)
	if !ok {
		return RoleNone
	}
	return p.Role()
}

// Pins returns the datasheet names of all pins, sorted.
func (t *Table) Pins() []string {
	names := make([]string, 0, len(t.pins))
	for name := range t.pins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AssignmentNames returns the pins in assignment form ("PIN_A6"), sorted.
func (t *Table) AssignmentNames() []string {
	names := t.Pins()
	for i, n := range names {
		names[i] = AssignmentPrefix + n
	}
	return names
}
