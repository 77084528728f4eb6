package service

import (
	"fmt"
	"iter"
	"strings"

	"lunchsync/internal/model"
)

const floorPrefix = "Floor"

// NoWeekday marks the intent of a user row without any filled weekday cell.
const NoWeekday = -1

// OrderIntent is one non-empty weekday cell of a user row, or a bare row
// marker when Weekday is NoWeekday.
type OrderIntent struct {
	Row      int
	UserName string
	Address  string
	Weekday  int
	Token    string
}

func (i OrderIntent) HasOrder() bool {
	return i.Weekday != NoWeekday
}

// matrixState is threaded through the rows; it carries the address of the
// last "Floor" marker row.
type matrixState struct {
	address string
}

// ParseWeekMatrix walks a week's sheet rows and yields one intent per filled
// weekday cell, in row then column order. A user row with no filled cell
// yields a single NoWeekday intent so the user is still resolved. Rows
// without a user name yield a model.ErrParse error and are skipped. Each
// call starts from an empty state.
func ParseWeekMatrix(rows [][]string) iter.Seq2[OrderIntent, error] {
	return func(yield func(OrderIntent, error) bool) {
		var state matrixState
		for i, row := range rows {
			var intents []OrderIntent
			var err error
			state, intents, err = parseMatrixRow(state, i, row)
			if err != nil {
				if !yield(OrderIntent{Row: i}, err) {
					return
				}
				continue
			}
			for _, intent := range intents {
				if !yield(intent, nil) {
					return
				}
			}
		}
	}
}

func parseMatrixRow(state matrixState, index int, row []string) (matrixState, []OrderIntent, error) {
	if isBlankRow(row) {
		return state, nil, nil
	}
	head := strings.TrimSpace(row[0])
	if strings.HasPrefix(head, floorPrefix) {
		return matrixState{address: head}, nil, nil
	}
	if head == "" {
		return state, nil, fmt.Errorf("%w: row %d has orders but no user name", model.ErrParse, index+1)
	}

	cells := row[1:]
	if len(cells) > model.WorkDays {
		cells = cells[:model.WorkDays]
	}
	var intents []OrderIntent
	for day, cell := range cells {
		token := strings.TrimSpace(cell)
		if token == "" {
			continue
		}
		intents = append(intents, OrderIntent{
			Row:      index,
			UserName: head,
			Address:  state.address,
			Weekday:  day,
			Token:    token,
		})
	}
	if len(intents) == 0 {
		intents = append(intents, OrderIntent{Row: index, UserName: head, Address: state.address, Weekday: NoWeekday})
	}
	return state, intents, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
