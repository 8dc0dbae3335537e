package registry

import "fmt"

// Agent is the user agent advertised by browser renderers
type Agent struct {
	Product string
	Version string
	Channel string
	Skin    string
}

// IsZero reports whether no product is configured
func (a Agent) IsZero() bool {
	return a.Product == ""
}

// String renders "<product>/<version> (<channel>; <skin> skin)"
func (a Agent) String() string {
	if a.IsZero() {
		return ""
	}
	skin := a.Skin
	if skin == "" {
		skin = "default"
	}
	return fmt.Sprintf("%s/%s (%s; %s skin)", a.Product, a.Version, a.Channel, skin)
}
