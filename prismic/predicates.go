package prismic

import "strconv"

// At builds an equality predicate, e.g. [at(document.type,"posts")].
func At(path, value string) string {
	return "[at(" + path + "," + strconv.Quote(value) + ")]"
}
