package cart

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/drstein77/storefront/internal/models"
)

var csvHeader = []string{"product_id", "title", "price", "quantity", "subtotal"}

// WriteCSV writes one row per line followed by a total row.
func WriteCSV(w io.Writer, s State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, l := range s.Lines {
		row := []string{
			string(l.Product.ID),
			l.Product.Title,
			strconv.FormatFloat(l.Product.Price, 'f', 2, 64),
			strconv.Itoa(l.Quantity),
			l.Subtotal().StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"total", "", "", strconv.Itoa(s.ItemCount()), s.Total.StringFixed(2)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// Entry is a product id and quantity read back from an exported cart.
type Entry struct {
	ID       models.ProductID
	Quantity int
}

// ReadCSV reads entries from a document written by WriteCSV. Only the
// product_id and quantity columns are used; the header and total rows are skipped.
func ReadCSV(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	idCol, qtyCol := 0, 3
	var out []Entry
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if line == 1 && isHeader(rec) {
			for i, name := range rec {
				switch strings.ToLower(strings.TrimSpace(name)) {
				case "product_id":
					idCol = i
				case "quantity":
					qtyCol = i
				}
			}
			continue
		}
		if len(rec) <= max(idCol, qtyCol) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(idCol, qtyCol)+1, len(rec))
		}
		id := strings.TrimSpace(rec[idCol])
		if id == "" || id == "total" {
			continue
		}
		q, err := strconv.Atoi(strings.TrimSpace(rec[qtyCol]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad quantity %q", line, rec[qtyCol])
		}
		out = append(out, Entry{ID: models.ProductID(id), Quantity: q})
	}
	return out, nil
}

func isHeader(rec []string) bool {
	for _, name := range rec {
		if strings.EqualFold(strings.TrimSpace(name), csvHeader[0]) {
			return true
		}
	}
	return false
}
