package infrastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"thermalblock-rb/pkg/reducedbasis"
)

type FmtFunc func(float64) string

type TXTResultWriter struct {
	logger *zap.Logger
}

func NewTXTResultWriter(logger *zap.Logger) *TXTResultWriter {
	return &TXTResultWriter{logger: logger}
}

// WriteHistory writes the greedy diagnostics: one line per accepted
// iteration with the basis size, the maximum error over the training set at
// selection time and the selected parameter.
func (w *TXTResultWriter) WriteHistory(filename string, history []reducedbasis.Extension) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	fmt.Fprintf(writer, "Size\tMaxError\tSelectedMu\n")
	for i, ext := range history {
		fmt.Fprintf(writer, "%d\t%.6e\t%s\n", i+1, ext.MaxError, ext.Mu.String())
	}

	return nil
}

// WriteSolutionGrid writes a solution as a labeled grid, coordinate labels
// in the first row and column.
func (w *TXTResultWriter) WriteSolutionGrid(filename string, coords []float64, grid [][]float64, formatter FmtFunc) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	// Записываем координаты по x
	var head []string
	for _, x := range coords {
		head = append(head, strconv.FormatFloat(x, 'f', 3, 64))
	}
	fmt.Fprintf(writer, "Y/X\t%s\n", strings.Join(head, "\t"))

	// Записываем строки с координатой y в первом столбце
	for j, row := range grid {
		var rowStr []string
		for _, val := range row {
			rowStr = append(rowStr, formatter(val))
		}
		fmt.Fprintf(writer, "%s\t%s\n", strconv.FormatFloat(coords[j], 'f', 3, 64), strings.Join(rowStr, "\t"))
	}

	return nil
}
