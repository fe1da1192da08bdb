// Package importer reads bank statement exports into raw transactions.
package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"mifi/internal/classifier"
	"mifi/internal/core"
)

// BankMBank is the bank name stored on imported mBank rows.
const BankMBank = "MBANK"

const (
	colBooking      = "#Data księgowania"
	colOperation    = "#Data operacji"
	colDescription  = "#Opis operacji"
	colTitle        = "#Tytuł"
	colCounterparty = "#Nadawca/Odbiorca"
	colAccount      = "#Numer konta"
	colAmount       = "#Kwota"
	colBalance      = "#Saldo po operacji"
)

const utf8BOM = "\xef\xbb\xbf"

var (
	// ErrNoHeader is returned when the export has no recognizable header line.
	ErrNoHeader = errors.New("mbank: header row not found")
	errNoDate   = errors.New("no booking or operation date")
)

// namespace for row ids; re-importing the same statement yields the same ids.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mifi:import:mbank"))

// Row is one parsed statement line before it becomes a transaction.
type Row struct {
	Date         time.Time
	Description  string
	Title        string
	Counterparty string
	Account      string
	Amount       core.Money // signed as in the statement
	Balance      string     // balance after the operation, as printed
	// Occurrence numbers rows whose content repeats within one statement,
	// e.g. two identical tickets bought on the same day.
	Occurrence int
}

// Result of an import.
type Result struct {
	Transactions []core.RawTransaction
	Skipped      int // blank or unparseable lines
	Warnings     []string
}

// MBank parses mBank CSV statements.
type MBank struct {
	Classifier *classifier.Classifier
	// Location interprets statement dates. Nil means UTC.
	Location *time.Location
}

// NewMBank returns a parser using the built-in classifier.
func NewMBank() *MBank {
	return &MBank{Classifier: classifier.Default(), Location: time.UTC}
}

// Parse reads a semicolon separated export. Statements are windows-1250
// unless they start with a UTF-8 byte order mark. Lines before the header
// are skipped.
func (p *MBank) Parse(r io.Reader) (Result, error) {
	br := bufio.NewReader(r)
	var src io.Reader = transform.NewReader(br, charmap.Windows1250.NewDecoder())
	if head, _ := br.Peek(len(utf8BOM)); string(head) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
		src = br
	}
	lines, err := readLines(src)
	if err != nil {
		return Result{}, fmt.Errorf("read statement: %w", err)
	}

	headerIdx := -1
	for i, l := range lines {
		l = stripBOM(l)
		if strings.Contains(l, colOperation) || strings.Contains(l, colBooking) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return Result{}, ErrNoHeader
	}

	cr := csv.NewReader(strings.NewReader(strings.Join(lines[headerIdx:], "\n")))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)

	var res Result
	seen := make(map[string]int)
	line := headerIdx + 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			res.Skipped++
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		row, ok, warn := p.parseRow(rec, cols)
		if warn != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: %s", line, warn))
		}
		if !ok {
			res.Skipped++
			continue
		}
		key := rowKey(row)
		row.Occurrence = seen[key]
		seen[key]++
		res.Transactions = append(res.Transactions, p.toRaw(row))
	}
	return res, nil
}

func (p *MBank) parseRow(rec []string, cols map[string]int) (Row, bool, string) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return clean(rec[i])
	}

	amountRaw, title, desc := get(colAmount), get(colTitle), get(colDescription)
	if amountRaw == "" && title == "" && desc == "" {
		return Row{}, false, ""
	}

	var warn string
	amount, err := core.ParseMoney(amountRaw)
	if err != nil {
		warn = fmt.Sprintf("invalid amount %q, using 0", amountRaw)
		amount = core.Money{}
	}

	date, err := p.pickDate(get(colBooking), get(colOperation))
	if err != nil {
		return Row{}, false, err.Error()
	}

	return Row{
		Date:         date,
		Description:  desc,
		Title:        title,
		Counterparty: get(colCounterparty),
		Account:      get(colAccount),
		Amount:       amount,
		Balance:      get(colBalance),
	}, true, warn
}

func (p *MBank) toRaw(row Row) core.RawTransaction {
	typ := core.Income
	if row.Amount.IsNegative() {
		typ = core.Expense
	}
	category := classifier.Unknown
	if p.Classifier != nil {
		category = p.Classifier.Classify(row.Title)
	}
	return core.RawTransaction{
		ID:          core.FlexString(RowID(row).String()),
		Date:        core.At(row.Date),
		Title:       core.FlexString(row.Title),
		Description: core.FlexString(describe(row)),
		Type:        core.FlexString(typ),
		Amount:      core.Amount(row.Amount),
		Category:    core.FlexString(category),
		Bank:        BankMBank,
	}
}

// RowID derives a stable id from the row content. Identical rows of one
// statement differ by Occurrence.
func RowID(row Row) uuid.UUID {
	key := rowKey(row)
	if row.Occurrence > 0 {
		key += "|#" + strconv.Itoa(row.Occurrence)
	}
	return uuid.NewSHA1(rowNamespace, []byte(key))
}

func rowKey(row Row) string {
	return strings.Join([]string{
		row.Date.Format("2006-01-02"),
		row.Amount.String(),
		row.Title,
		row.Description,
		row.Counterparty,
		row.Account,
		row.Balance,
	}, "|")
}

func (p *MBank) pickDate(booking, operation string) (time.Time, error) {
	chosen := booking
	if chosen == "" {
		chosen = operation
	}
	if chosen == "" {
		return time.Time{}, errNoDate
	}
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{"02.01.2006", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, chosen, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", chosen)
}

// describe joins the operation description, the counterparty and the
// metadata block of the title.
func describe(row Row) string {
	var parts []string
	if row.Description != "" {
		parts = append(parts, row.Description)
	}
	if row.Counterparty != "" {
		parts = append(parts, row.Counterparty)
	}
	if idx := strings.Index(row.Title, "DATA TRANSAKCJI"); idx >= 0 {
		parts = append(parts, row.Title[idx:])
	}
	return strings.Join(parts, " | ")
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(stripBOM(h))
		if h == "" {
			continue
		}
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	return lines, sc.Err()
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}

func clean(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
}
