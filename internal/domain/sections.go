package domain

const sectionSize = 6

// ProductSection is a titled group of products on the home screen.
type ProductSection struct {
	Key      string    `json:"sectionKey"`
	Title    string    `json:"title"`
	Products []Product `json:"products"`
}

var homeSections = []struct{ key, title string }{
	{"new-arrivals", "New Arrivals"},
	{"popular", "Popular"},
	{"trending", "Trending"},
}

// ProductSections slices products into consecutive groups of six for the
// home screen. Empty groups are omitted.
func ProductSections(products []Product) []ProductSection {
	var sections []ProductSection
	for i, s := range homeSections {
		start := i * sectionSize
		if start >= len(products) {
			break
		}
		end := min(start+sectionSize, len(products))
		sections = append(sections, ProductSection{
			Key:      s.key,
			Title:    s.title,
			Products: products[start:end],
		})
	}
	return sections
}
