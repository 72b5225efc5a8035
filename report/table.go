// Package report turns the records and metrics of a run into tables, files,
// and charts for people to read.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/structs"

	"github.com/sarchlab/tellersim/teller"
)

// ErrMalformedCSV is returned when a results file cannot be read back.
var ErrMalformedCSV = errors.New("malformed results csv")

// A Row is one customer in the results table.
type Row struct {
	CustomerID       int     `structs:"customer_id" yaml:"customer_id"`
	ArrivalTime      float64 `structs:"arrival_time" yaml:"arrival_time"`
	ServiceStartTime float64 `structs:"service_start_time" yaml:"service_start_time"`
	ServiceTime      float64 `structs:"service_time" yaml:"service_time"`
	DepartureTime    float64 `structs:"departure_time" yaml:"departure_time"`
	WaitingTime      float64 `structs:"waiting_time" yaml:"waiting_time"`
	SystemTime       float64 `structs:"system_time" yaml:"system_time"`
}

// Columns returns the header of the results table.
func Columns() []string {
	fields := structs.New(Row{}).Fields()

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Tag("structs"))
	}

	return names
}

// Table builds one row per customer, keeping the order of the records.
func Table(customers []teller.Customer) []Row {
	rows := make([]Row, 0, len(customers))

	for _, c := range customers {
		rows = append(rows, Row{
			CustomerID:       c.ID,
			ArrivalTime:      c.ArrivalTime,
			ServiceStartTime: c.ServiceStartTime,
			ServiceTime:      c.ServiceTime,
			DepartureTime:    c.DepartureTime,
			WaitingTime:      c.WaitingTime(),
			SystemTime:       c.SystemTime(),
		})
	}

	return rows
}

func (r Row) record() []string {
	return []string{
		strconv.Itoa(r.CustomerID),
		formatFloat(r.ArrivalTime),
		formatFloat(r.ServiceStartTime),
		formatFloat(r.ServiceTime),
		formatFloat(r.DepartureTime),
		formatFloat(r.WaitingTime),
		formatFloat(r.SystemTime),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes the rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns()); err != nil {
		return err
	}

	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// ReadCSV reads rows written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns())

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrMalformedCSV, err)
	}

	for i, name := range Columns() {
		if header[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q",
				ErrMalformedCSV, i, header[i], name)
		}
	}

	var rows []Row

	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}

		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedCSV, line, err)
		}

		rows = append(rows, row)
	}
}

func parseRecord(record []string) (Row, error) {
	id, err := strconv.Atoi(record[0])
	if err != nil {
		return Row{}, err
	}

	values := make([]float64, len(record)-1)
	for i, field := range record[1:] {
		values[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return Row{}, err
		}
	}

	return Row{
		CustomerID:       id,
		ArrivalTime:      values[0],
		ServiceStartTime: values[1],
		ServiceTime:      values[2],
		DepartureTime:    values[3],
		WaitingTime:      values[4],
		SystemTime:       values[5],
	}, nil
}
