package assets

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// ListStyles returns the names of the built-in styles, sorted.
func ListStyles() []string {
	return defaultLoader.Styles()
}
