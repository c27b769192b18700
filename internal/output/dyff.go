package output

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/gonvenience/ytbx"
	"github.com/homeport/dyff/pkg/dyff"
	"sigs.k8s.io/yaml"
)

// MetadataDiff compares two metadata documents (fingerprint -> rarity).
type MetadataDiff struct {
	Added    []string
	Removed  []string
	Modified []ModifiedItem

	// Report is the dyff human report of the two documents. Empty when they
	// are equal.
	Report string
}

// HasChanges reports whether the documents differ.
func (d *MetadataDiff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// Render renders the entry lists with styles.
func (d *MetadataDiff) Render(styles *Styles) string {
	return RenderDiff(d.Added, d.Removed, d.Modified, styles)
}

// DiffMetadata compares two metadata documents. Both JSON and YAML are accepted.
func DiffMetadata(oldName string, oldData []byte, newName string, newData []byte, useColor bool) (*MetadataDiff, error) {
	oldEntries, err := decodeEntries(oldData)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", oldName, err)
	}
	newEntries, err := decodeEntries(newData)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", newName, err)
	}

	d := &MetadataDiff{}
	for fp, r := range newEntries {
		prev, ok := oldEntries[fp]
		switch {
		case !ok:
			d.Added = append(d.Added, fp)
		case prev != r:
			d.Modified = append(d.Modified, ModifiedItem{
				Name: fp,
				Diff: "- " + formatRarity(prev) + "\n+ " + formatRarity(r),
			})
		}
	}
	for fp := range oldEntries {
		if _, ok := newEntries[fp]; !ok {
			d.Removed = append(d.Removed, fp)
		}
	}
	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.SortFunc(d.Modified, func(a, b ModifiedItem) int { return strings.Compare(a.Name, b.Name) })

	if !d.HasChanges() {
		return d, nil
	}

	d.Report, err = dyffReport(oldName, oldData, newName, newData, useColor)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func decodeEntries(data []byte) (map[string]float64, error) {
	entries := map[string]float64{}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func formatRarity(r float64) string {
	return strconv.FormatFloat(r, 'g', -1, 64)
}

func dyffReport(oldName string, oldData []byte, newName string, newData []byte, useColor bool) (string, error) {
	from, err := loadInput(oldName, oldData)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", oldName, err)
	}
	to, err := loadInput(newName, newData)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", newName, err)
	}

	report, err := dyff.CompareInputFiles(from, to)
	if err != nil {
		return "", fmt.Errorf("comparing metadata: %w", err)
	}
	if len(report.Diffs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	writer := &dyff.HumanReport{
		Report:            report,
		DoNotInspectCerts: true,
		NoTableStyle:      !useColor,
		OmitHeader:        true,
	}
	if err := writer.WriteReport(io.Writer(&buf)); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func loadInput(name string, data []byte) (ytbx.InputFile, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}
	docs, err := ytbx.LoadYAMLDocuments(data)
	if err != nil {
		return ytbx.InputFile{}, err
	}
	return ytbx.InputFile{Location: name, Documents: docs}, nil
}
