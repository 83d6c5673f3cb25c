package component

import (
	"encoding/json"
)

// Common holds the attributes every variant carries.
type Common struct {
	ID              string  `json:"id"`
	Type            Kind    `json:"type"`
	Left            float64 `json:"left"`
	Top             float64 `json:"top"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	ZIndex          int     `json:"zIndex"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderColor     string  `json:"borderColor"`
	BorderRadius    float64 `json:"borderRadius"`
	BorderWidth     float64 `json:"borderWidth"`
	BoxShadow       string  `json:"boxShadow"`
	Opacity         float64 `json:"opacity"`
	Visible         bool    `json:"visible"`
	Locked          bool    `json:"locked"`
	Selected        bool    `json:"selected"`
}

type CardFields struct {
	Title           string `json:"title"`
	Content         string `json:"content"`
	HeaderBGColor   string `json:"headerBGColor"`
	HeaderTextColor string `json:"headerTextColor"`
	ContentColor    string `json:"contentColor"`
}

type ImageFields struct {
	Src       string `json:"src"`
	Alt       string `json:"alt"`
	ObjectFit string `json:"objectFit"`
}

// Snapshot is the plain serialisable form of a component. Only the fields
// belonging to its Type are written to JSON.
type Snapshot struct {
	Common
	CardFields
	ImageFields
}

// Defaults returns the snapshot a fresh component of kind starts from.
func Defaults(kind Kind) Snapshot {
	if kind == "" {
		kind = KindBase
	}
	s := Snapshot{Common: Common{
		Type:            kind,
		Width:           300,
		Height:          200,
		ZIndex:          1,
		BackgroundColor: "#ffffff",
		BorderColor:     "#000000",
		BorderWidth:     1,
		BoxShadow:       "0 2px 4px rgba(0,0,0,0.1)",
		Opacity:         1,
		Visible:         true,
	}}
	switch kind {
	case KindCard:
		s.CardFields = CardFields{
			Title:           "Custom Card",
			Content:         "This is a custom card",
			HeaderBGColor:   "#f0f0f0",
			HeaderTextColor: "#000000",
			ContentColor:    "#000000",
		}
	case KindImage:
		s.ImageFields = ImageFields{
			Alt:       "Image",
			ObjectFit: FitContain,
		}
	}
	return s
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case KindCard:
		return json.Marshal(struct {
			Common
			CardFields
		}{s.Common, s.CardFields})
	case KindImage:
		return json.Marshal(struct {
			Common
			ImageFields
		}{s.Common, s.ImageFields})
	default:
		return json.Marshal(s.Common)
	}
}

// UnmarshalJSON fills absent keys with the defaults of the decoded type.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	type plain Snapshot
	p := plain(Defaults(probe.Type))
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == "" {
		p.Type = KindBase
	}
	*s = Snapshot(p)
	return nil
}

// Patch returns a patch setting every field the snapshot's variant owns.
// Identity, type and selection are not part of it.
func (s Snapshot) Patch() Patch {
	p := Patch{
		Left:            Ptr(s.Left),
		Top:             Ptr(s.Top),
		Width:           Ptr(s.Width),
		Height:          Ptr(s.Height),
		ZIndex:          Ptr(s.ZIndex),
		BackgroundColor: Ptr(s.BackgroundColor),
		BorderColor:     Ptr(s.BorderColor),
		BorderRadius:    Ptr(s.BorderRadius),
		BorderWidth:     Ptr(s.BorderWidth),
		BoxShadow:       Ptr(s.BoxShadow),
		Opacity:         Ptr(s.Opacity),
		Visible:         Ptr(s.Visible),
		Locked:          Ptr(s.Locked),
	}
	switch s.Type {
	case KindCard:
		p.Title = Ptr(s.Title)
		p.Content = Ptr(s.Content)
		p.HeaderBGColor = Ptr(s.HeaderBGColor)
		p.HeaderTextColor = Ptr(s.HeaderTextColor)
		p.ContentColor = Ptr(s.ContentColor)
	case KindImage:
		p.Src = Ptr(s.Src)
		p.Alt = Ptr(s.Alt)
		p.ObjectFit = Ptr(s.ObjectFit)
	}
	return p
}

// Equal compares every persisted attribute, ignoring the selection flag.
func (s Snapshot) Equal(o Snapshot) bool {
	s.Selected, o.Selected = false, false
	return s == o
}
