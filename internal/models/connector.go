package models

import (
	"encoding/json"
	"sort"
)

// Connector is one record of the connector list. Fields the pipeline does not
// know about are kept in Extra so a rewrite of the list does not drop them.
type Connector struct {
	Name      string
	Logo      string
	Published bool
	Extra     map[string]json.RawMessage
}

var connectorKnownKeys = []string{"name", "logo", "published"}

func (c *Connector) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Connector{}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &c.Name); err != nil {
			return err
		}
	}
	if v, ok := raw["logo"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &c.Logo); err != nil {
			return err
		}
	}
	if v, ok := raw["published"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &c.Published); err != nil {
			return err
		}
	}
	for _, k := range connectorKnownKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		c.Extra = raw
	}
	return nil
}

// MarshalJSON writes name and logo (when set), the extra fields in key order,
// and published last.
func (c Connector) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	appendField := func(key string, val []byte) {
		if len(buf) > 1 {
			buf = append(buf, ',')
		}
		k, _ := json.Marshal(key)
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}

	name, err := json.Marshal(c.Name)
	if err != nil {
		return nil, err
	}
	appendField("name", name)
	if c.Logo != "" {
		logo, err := json.Marshal(c.Logo)
		if err != nil {
			return nil, err
		}
		appendField("logo", logo)
	}

	keys := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendField(k, c.Extra[k])
	}

	published, _ := json.Marshal(c.Published)
	appendField("published", published)
	buf = append(buf, '}')
	return buf, nil
}
