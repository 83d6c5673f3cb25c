package surface

import (
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"pagesmith/internal/component"
	"pagesmith/internal/dom"
)

// Input kinds of a form field.
const (
	InputNumber   = "number"
	InputRange    = "range"
	InputColor    = "color"
	InputText     = "text"
	InputURL      = "url"
	InputTextarea = "textarea"
	InputCheckbox = "checkbox"
	InputSelect   = "select"
)

type field struct {
	id, label string
	input     string
	group     string
	// kinds limits the field to these variants; nil means every variant.
	kinds   []component.Kind
	options []string
	get     func(component.Snapshot) string
	set     func(string) (component.Patch, error)
}

var fitOptions = []string{component.FitContain, component.FitCover, component.FitFill, component.FitNone}

var groupOrder = []string{"Size + Position", "Styles", "Card Properties", "Image Properties"}

func numberField(id, label, group string, get func(component.Snapshot) float64, set func(float64) component.Patch) field {
	return field{
		id: id, label: label, input: InputNumber, group: group,
		get: func(s component.Snapshot) string { return strconv.FormatFloat(get(s), 'f', -1, 64) },
		set: func(v string) (component.Patch, error) {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return component.Patch{}, fmt.Errorf("%s: %q is not a number: %w", id, v, component.ErrValidation)
			}
			return set(f), nil
		},
	}
}

func textField(id, label, input, group string, kind component.Kind, get func(component.Snapshot) string, set func(string) component.Patch) field {
	f := field{
		id: id, label: label, input: input, group: group, get: get,
		set: func(v string) (component.Patch, error) { return set(v), nil },
	}
	if kind != "" {
		f.kinds = []component.Kind{kind}
	}
	return f
}

func boolField(id, label, group string, get func(component.Snapshot) bool, set func(bool) component.Patch) field {
	return field{
		id: id, label: label, input: InputCheckbox, group: group,
		get: func(s component.Snapshot) string { return strconv.FormatBool(get(s)) },
		set: func(v string) (component.Patch, error) {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return component.Patch{}, fmt.Errorf("%s: %q is not a boolean: %w", id, v, component.ErrValidation)
			}
			return set(b), nil
		},
	}
}

var propertyFields = []field{
	numberField("left", "Left", "Size + Position",
		func(s component.Snapshot) float64 { return s.Left },
		func(v float64) component.Patch { return component.Patch{Left: &v} }),
	numberField("top", "Top", "Size + Position",
		func(s component.Snapshot) float64 { return s.Top },
		func(v float64) component.Patch { return component.Patch{Top: &v} }),
	numberField("width", "Width", "Size + Position",
		func(s component.Snapshot) float64 { return s.Width },
		func(v float64) component.Patch { return component.Patch{Width: &v} }),
	numberField("height", "Height", "Size + Position",
		func(s component.Snapshot) float64 { return s.Height },
		func(v float64) component.Patch { return component.Patch{Height: &v} }),
	{
		id: "z-index", label: "Z-Index", input: InputNumber, group: "Size + Position",
		get: func(s component.Snapshot) string { return strconv.Itoa(s.ZIndex) },
		set: func(v string) (component.Patch, error) {
			z, err := strconv.Atoi(v)
			if err != nil {
				return component.Patch{}, fmt.Errorf("z-index: %q is not an integer: %w", v, component.ErrValidation)
			}
			return component.Patch{ZIndex: &z}, nil
		},
	},
	textField("background-color", "Background Color", InputColor, "Styles", "",
		func(s component.Snapshot) string { return s.BackgroundColor },
		func(v string) component.Patch { return component.Patch{BackgroundColor: &v} }),
	textField("border-color", "Border Color", InputColor, "Styles", "",
		func(s component.Snapshot) string { return s.BorderColor },
		func(v string) component.Patch { return component.Patch{BorderColor: &v} }),
	numberField("border-radius", "Border Radius", "Styles",
		func(s component.Snapshot) float64 { return s.BorderRadius },
		func(v float64) component.Patch { return component.Patch{BorderRadius: &v} }),
	numberField("border-width", "Border Width", "Styles",
		func(s component.Snapshot) float64 { return s.BorderWidth },
		func(v float64) component.Patch { return component.Patch{BorderWidth: &v} }),
	func() field {
		f := numberField("opacity", "Opacity", "Styles",
			func(s component.Snapshot) float64 { return s.Opacity },
			func(v float64) component.Patch { return component.Patch{Opacity: &v} })
		f.input = InputRange
		return f
	}(),
	boolField("visible", "Visible", "Styles",
		func(s component.Snapshot) bool { return s.Visible },
		func(v bool) component.Patch { return component.Patch{Visible: &v} }),
	boolField("locked", "Locked", "Styles",
		func(s component.Snapshot) bool { return s.Locked },
		func(v bool) component.Patch { return component.Patch{Locked: &v} }),

	textField("card-title", "Title", InputText, "Card Properties", component.KindCard,
		func(s component.Snapshot) string { return s.Title },
		func(v string) component.Patch { return component.Patch{Title: &v} }),
	textField("card-content", "Content", InputTextarea, "Card Properties", component.KindCard,
		func(s component.Snapshot) string { return s.Content },
		func(v string) component.Patch { return component.Patch{Content: &v} }),
	textField("header-bg-color", "Header Background Color", InputColor, "Card Properties", component.KindCard,
		func(s component.Snapshot) string { return s.HeaderBGColor },
		func(v string) component.Patch { return component.Patch{HeaderBGColor: &v} }),
	textField("header-text-color", "Header Text Color", InputColor, "Card Properties", component.KindCard,
		func(s component.Snapshot) string { return s.HeaderTextColor },
		func(v string) component.Patch { return component.Patch{HeaderTextColor: &v} }),
	textField("content-color", "Content Color", InputColor, "Card Properties", component.KindCard,
		func(s component.Snapshot) string { return s.ContentColor },
		func(v string) component.Patch { return component.Patch{ContentColor: &v} }),

	textField("image-src", "Image URL", InputURL, "Image Properties", component.KindImage,
		func(s component.Snapshot) string { return s.Src },
		func(v string) component.Patch { return component.Patch{Src: &v} }),
	textField("image-alt", "Alt Text", InputText, "Image Properties", component.KindImage,
		func(s component.Snapshot) string { return s.Alt },
		func(v string) component.Patch { return component.Patch{Alt: &v} }),
	func() field {
		f := textField("object-fit", "Object Fit", InputSelect, "Image Properties", component.KindImage,
			func(s component.Snapshot) string { return s.ObjectFit },
			func(v string) component.Patch { return component.Patch{ObjectFit: &v} })
		f.options = fitOptions
		return f
	}(),
}

// Fields of the add-image panel. Their values are read on submit.
var imagePanelFields = []field{
	{id: "image-url", label: "Image URL", input: InputURL},
	{id: "image-alt-text", label: "Image Alt Text", input: InputText},
	{id: "image-fit", label: "Image Fit", input: InputSelect, options: fitOptions},
}

func lookupField(fields []field, id string) (field, bool) {
	i := slices.IndexFunc(fields, func(f field) bool { return f.id == id })
	if i < 0 {
		return field{}, false
	}
	return fields[i], true
}

func (f field) applies(kind component.Kind) bool {
	return f.kinds == nil || slices.Contains(f.kinds, kind)
}

// row builds the label and input for f holding value.
func (f field) row(value string) *html.Node {
	row := dom.Element("div", "class", "property-row")
	label := dom.Element("label", "class", "property-label", "for", f.id)
	label.AppendChild(dom.Text(f.label + ":"))
	row.AppendChild(label)

	var in *html.Node
	switch f.input {
	case InputTextarea:
		in = dom.Element("textarea", "class", "property-input", "id", f.id)
	case InputSelect:
		in = dom.Element("select", "class", "property-input", "id", f.id)
		for _, opt := range f.options {
			o := dom.Element("option", "value", opt)
			o.AppendChild(dom.Text(opt))
			in.AppendChild(o)
		}
	default:
		in = dom.Element("input", "class", "property-input", "type", f.input, "id", f.id)
		if f.input == InputRange {
			dom.SetAttr(in, "min", "0")
			dom.SetAttr(in, "max", "1")
			dom.SetAttr(in, "step", "0.1")
		}
	}
	setInputValue(in, value)
	row.AppendChild(in)
	return row
}

// setInputValue writes v into an input, textarea, select or checkbox.
func setInputValue(n *html.Node, v string) {
	switch n.Data {
	case "textarea":
		dom.SetText(n, v)
	case "select":
		for o := n.FirstChild; o != nil; o = o.NextSibling {
			val, _ := dom.Attr(o, "value")
			dom.SetBoolAttr(o, "selected", val == v)
		}
	default:
		if t, _ := dom.Attr(n, "type"); t == InputCheckbox {
			dom.SetBoolAttr(n, "checked", v == "true")
			return
		}
		dom.SetAttr(n, "value", v)
	}
}

func inputValue(n *html.Node) string {
	switch n.Data {
	case "textarea":
		return dom.TextContent(n)
	case "select":
		for o := n.FirstChild; o != nil; o = o.NextSibling {
			if dom.HasAttr(o, "selected") {
				v, _ := dom.Attr(o, "value")
				return v
			}
		}
		return ""
	}
	if t, _ := dom.Attr(n, "type"); t == InputCheckbox {
		return strconv.FormatBool(dom.HasAttr(n, "checked"))
	}
	v, _ := dom.Attr(n, "value")
	return v
}

// rebuildProperties shows the form for the primary selection or the empty
// notice when nothing is selected.
func (s *Surface) rebuildProperties() {
	dom.Clear(s.form)
	primary, ok := s.ed.Primary()
	if !s.ed.EditMode() || !ok {
		dom.SetStyle(s.noSelection, "display", "block")
		dom.SetStyle(s.form, "display", "none")
		return
	}
	dom.SetStyle(s.noSelection, "display", "none")
	dom.SetStyle(s.form, "display", "block")
	dom.SetAttr(s.form, "data-component", primary.ID())

	snap := primary.Snapshot()
	for _, name := range groupOrder {
		var content *html.Node
		for _, f := range propertyFields {
			if f.group != name || !f.applies(snap.Type) {
				continue
			}
			if content == nil {
				content = s.formGroup(name)
			}
			content.AppendChild(f.row(f.get(snap)))
		}
	}
	actions := s.formGroup("Actions")
	row := dom.Element("div", "class", "property-row")
	row.AppendChild(button(ButtonDelete, "Delete Component", "danger"))
	actions.AppendChild(row)
}

func (s *Surface) formGroup(title string) *html.Node {
	group := dom.Element("div", "class", "property-group")
	group.AppendChild(heading("div", "property-group-header", title))
	content := dom.Element("div", "class", "property-group-content")
	group.AppendChild(content)
	s.form.AppendChild(group)
	return content
}

// syncForm refreshes input values after c changed, leaving the form
// structure alone.
func (s *Surface) syncForm(c component.Component) {
	if id, _ := dom.Attr(s.form, "data-component"); c == nil || id != c.ID() {
		return
	}
	snap := c.Snapshot()
	for _, f := range propertyFields {
		if n := dom.FindByID(s.form, f.id); n != nil {
			setInputValue(n, f.get(snap))
		}
	}
}

// Fields lists the ids of the property inputs currently shown.
func (s *Surface) Fields() []string {
	var ids []string
	for _, f := range propertyFields {
		if dom.FindByID(s.form, f.id) != nil {
			ids = append(ids, f.id)
		}
	}
	return ids
}

// ImagePanelFields lists the add-image panel inputs, none while the panel
// is closed.
func (s *Surface) ImagePanelFields() []string {
	if !s.ImagePanelOpen() {
		return nil
	}
	ids := make([]string, len(imagePanelFields))
	for i, f := range imagePanelFields {
		ids[i] = f.id
	}
	return ids
}

func anyField(id string) (field, bool) {
	if f, ok := lookupField(propertyFields, id); ok {
		return f, true
	}
	return lookupField(imagePanelFields, id)
}

// FieldLabel returns the label of a property or image panel input.
func (s *Surface) FieldLabel(id string) string {
	if f, ok := anyField(id); ok {
		return f.label
	}
	return id
}

// FieldInput returns the input kind of a field, one of the Input constants.
func (s *Surface) FieldInput(id string) string {
	f, _ := anyField(id)
	return f.input
}

// FieldOptions lists the choices of a select field.
func (s *Surface) FieldOptions(id string) []string {
	f, _ := anyField(id)
	return slices.Clone(f.options)
}

// FieldValue returns the current value of a property or image panel input.
func (s *Surface) FieldValue(id string) (string, bool) {
	n := dom.FindByID(s.root, id)
	if n == nil || !isInput(n) {
		return "", false
	}
	return inputValue(n), true
}

func isInput(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "input" || n.Data == "textarea" || n.Data == "select")
}

// SetField enters value into the input id. Property inputs update the
// primary selection right away; image panel inputs are read on submit.
func (s *Surface) SetField(id, value string) error {
	if _, ok := lookupField(imagePanelFields, id); ok {
		n := dom.FindByID(s.imagePanel, id)
		if n == nil || !s.ImagePanelOpen() {
			s.logger.Warn("image panel field not shown", zap.String("field", id))
			return fmt.Errorf("field %s: %w", id, ErrNoField)
		}
		setInputValue(n, value)
		return nil
	}
	if !s.ed.EditMode() {
		return ErrViewing
	}
	f, ok := lookupField(propertyFields, id)
	n := dom.FindByID(s.form, id)
	primary, selected := s.ed.Primary()
	if !ok || n == nil || !selected {
		s.logger.Warn("property field not shown", zap.String("field", id))
		return fmt.Errorf("field %s: %w", id, ErrNoField)
	}
	p, err := f.set(value)
	if err != nil {
		s.syncForm(primary)
		return err
	}
	if _, err := s.ed.UpdateComponent(primary.ID(), p); err != nil {
		s.syncForm(primary)
		return err
	}
	return nil
}
