package tiled

import "encoding/json"

// Tiled JSON shapes, keys in the order Tiled itself writes them.

type tileLayerJSON struct {
	Compression string          `json:"compression,omitempty"`
	Data        json.RawMessage `json:"data"`
	Encoding    string          `json:"encoding,omitempty"`
	Height      int             `json:"height"`
	ID          uint32          `json:"id"`
	Name        string          `json:"name"`
	Opacity     float64         `json:"opacity"`
	Type        string          `json:"type"`
	Visible     bool            `json:"visible"`
	Width       int             `json:"width"`
	X           int             `json:"x"`
	Y           int             `json:"y"`
}

type objectGroupJSON struct {
	DrawOrder string       `json:"draworder"`
	ID        uint32       `json:"id"`
	Name      string       `json:"name"`
	Objects   []objectJSON `json:"objects"`
	Opacity   float64      `json:"opacity"`
	Type      string       `json:"type"`
	Visible   bool         `json:"visible"`
	X         int          `json:"x"`
	Y         int          `json:"y"`
}

type objectJSON struct {
	GID        uint64         `json:"gid,omitempty"`
	Height     int            `json:"height"`
	ID         uint32         `json:"id"`
	Name       string         `json:"name"`
	Properties []propertyJSON `json:"properties,omitempty"`
	Rotation   float64        `json:"rotation"`
	Type       string         `json:"type"`
	Visible    bool           `json:"visible"`
	Width      int            `json:"width"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
}

type propertyJSON struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON encodes the layer in Tiled JSON form.
func (l Layer) MarshalJSON() ([]byte, error) {
	if l.Kind == KindObjectGroup {
		g := objectGroupJSON{
			DrawOrder: "topdown",
			ID:        l.ID,
			Name:      l.Name,
			Objects:   make([]objectJSON, 0, len(l.Objects)),
			Opacity:   1,
			Type:      KindObjectGroup.String(),
			Visible:   l.Visible,
		}
		for _, o := range l.Objects {
			obj := objectJSON{
				GID:     o.GID,
				Height:  o.Height,
				ID:      o.ID,
				Visible: true,
				Width:   o.Width,
				X:       o.X,
				Y:       o.Y,
			}
			for _, p := range o.Properties {
				obj.Properties = append(obj.Properties, propertyJSON(p))
			}
			g.Objects = append(g.Objects, obj)
		}
		return json.Marshal(g)
	}

	t := tileLayerJSON{
		Height:  l.Height,
		ID:      l.ID,
		Name:    l.Name,
		Opacity: 1,
		Type:    KindTileLayer.String(),
		Visible: l.Visible,
		Width:   l.Width,
	}
	if l.Data != nil {
		data, err := json.Marshal(l.Data)
		if err != nil {
			return nil, err
		}
		t.Data = data
	} else {
		data, err := json.Marshal(l.RawData)
		if err != nil {
			return nil, err
		}
		t.Data = data
		t.Encoding = l.Encoding
		t.Compression = l.Compression
	}
	return json.Marshal(t)
}
