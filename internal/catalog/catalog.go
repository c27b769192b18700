// Package catalog loads and validates layer catalogs.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"sigs.k8s.io/yaml"

	"github.com/opmodel/combogen/internal/combo"
	oerrors "github.com/opmodel/combogen/internal/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Layer is one catalog entry as written in the catalog file.
type Layer struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Rarity   *float64 `json:"rarity,omitempty"`
	Elements []string `json:"elements"`

	// Dimensions is the placement rectangle [x, y, w, h].
	Dimensions []int `json:"dimensions"`
}

// Catalog is a validated layer catalog.
type Catalog struct {
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Layers   []Layer `json:"layers"`
	Required []Layer `json:"required"`

	// Source is the file the catalog was read from, if any.
	Source string `json:"-"`
}

// legacySize carries the upper-case canvas keys of older config.json files.
type legacySize struct {
	Width  int `json:"WIDTH,omitempty"`
	Height int `json:"HEIGHT,omitempty"`
}

// Load reads, schema-checks and validates the catalog at path. JSON and YAML
// are both accepted.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError(
				fmt.Sprintf("catalog file %s does not exist", path),
				path,
				"Pass the catalog path as an argument or set 'catalog' in the config file",
			)
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		var detail *oerrors.DetailError
		if errors.As(err, &detail) {
			detail.Location = path
		}
		return nil, err
	}
	c.Source = path
	return c, nil
}

// Parse decodes and validates catalog bytes.
func Parse(data []byte) (*Catalog, error) {
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("catalog is neither valid JSON nor YAML: %v", err), "", "", "")
	}

	if err := checkSchema(jsonData); err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(jsonData, &c); err != nil {
		return nil, oerrors.NewValidationError(fmt.Sprintf("decoding catalog: %v", err), "", "", "")
	}
	var legacy legacySize
	if err := yaml.Unmarshal(jsonData, &legacy); err == nil {
		if c.Width == 0 {
			c.Width = legacy.Width
		}
		if c.Height == 0 {
			c.Height = legacy.Height
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkSchema(jsonData []byte) error {
	schemaData, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaData)
	if schema.Err() != nil {
		return fmt.Errorf("compiling schema: %w", schema.Err())
	}

	value := ctx.CompileBytes(jsonData)
	if value.Err() != nil {
		return oerrors.NewValidationError(formatCUE(value.Err()), "", "", "")
	}

	unified := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return oerrors.NewValidationError(
			formatCUE(err), "", "",
			"Each layer needs id, name, elements and dimensions [x, y, w, h]; rarity must be in (0,1]",
		)
	}
	return nil
}

func formatCUE(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if path := strings.Join(e.Path(), "."); path != "" {
			msg = path + ": " + msg
		}
		lines = append(lines, msg)
	}
	return strings.Join(lines, "\n  ")
}

// Validate checks the constraints the schema cannot express.
func (c *Catalog) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return oerrors.NewValidationError(
			fmt.Sprintf("canvas size %dx%d is invalid", c.Width, c.Height),
			c.Source, "width", "Set width and height to positive pixel sizes")
	}

	seen := make(map[int]string)
	check := func(list string, layers []Layer) error {
		for i, l := range layers {
			field := fmt.Sprintf("%s[%d]", list, i)
			if prev, dup := seen[l.ID]; dup {
				return oerrors.NewValidationError(
					fmt.Sprintf("layer id %d is used by both %q and %q", l.ID, prev, l.Name),
					c.Source, field+".id", "Layer ids must be unique across layers and required")
			}
			seen[l.ID] = l.Name

			if len(l.Elements) == 0 {
				return oerrors.NewValidationError(
					fmt.Sprintf("layer %q has no elements", l.Name), c.Source, field+".elements", "")
			}
			elements := make(map[string]bool, len(l.Elements))
			for _, el := range l.Elements {
				if elements[el] {
					return oerrors.NewValidationError(
						fmt.Sprintf("layer %q lists element %q twice", l.Name, el), c.Source, field+".elements", "")
				}
				elements[el] = true
			}
			if len(l.Dimensions) != 4 {
				return oerrors.NewValidationError(
					fmt.Sprintf("layer %q dimensions must be [x, y, w, h]", l.Name), c.Source, field+".dimensions", "")
			}
			if l.Rarity != nil && (*l.Rarity <= 0 || *l.Rarity > 1) {
				return oerrors.NewValidationError(
					fmt.Sprintf("layer %q rarity %v is outside (0,1]", l.Name, *l.Rarity), c.Source, field+".rarity", "")
			}
		}
		return nil
	}
	if err := check("layers", c.Layers); err != nil {
		return err
	}
	return check("required", c.Required)
}

// ComboLayer converts the entry to the generator's layer type. An omitted
// rarity means unconstrained.
func (l Layer) ComboLayer() combo.Layer {
	rarity := 1.0
	if l.Rarity != nil {
		rarity = *l.Rarity
	}
	var rect combo.Rect
	if len(l.Dimensions) == 4 {
		rect = combo.Rect{X: l.Dimensions[0], Y: l.Dimensions[1], W: l.Dimensions[2], H: l.Dimensions[3]}
	}
	return combo.Layer{
		ID:        combo.LayerID(l.ID),
		Name:      l.Name,
		Elements:  append([]string(nil), l.Elements...),
		Rarity:    rarity,
		Placement: rect,
	}
}

// OptionalLayers returns the optional layers as generator layers.
func (c *Catalog) OptionalLayers() []combo.Layer {
	return toCombo(c.Layers)
}

// RequiredLayers returns the required layers as generator layers.
func (c *Catalog) RequiredLayers() []combo.Layer {
	return toCombo(c.Required)
}

// All returns optional followed by required layers, so metadata for every
// layer a merged combo can reference resolves through one list.
func (c *Catalog) All() []combo.Layer {
	return append(c.OptionalLayers(), c.RequiredLayers()...)
}

// Index maps layer IDs to layers across All.
func (c *Catalog) Index() map[combo.LayerID]combo.Layer {
	all := c.All()
	idx := make(map[combo.LayerID]combo.Layer, len(all))
	for _, l := range all {
		idx[l.ID] = l
	}
	return idx
}

func toCombo(layers []Layer) []combo.Layer {
	out := make([]combo.Layer, len(layers))
	for i, l := range layers {
		out[i] = l.ComboLayer()
	}
	return out
}
