package server

import (
	"html/template"
	"io/fs"
	"net/url"
	"sort"
	"strings"
)

var listingTemplate = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html>
<head><title>Index of {{.Path}}</title></head>
<body>
<h1>Index of {{.Path}}</h1>
<ul>
{{- if .Parent}}
<li><a href="../">Parent Directory</a></li>
{{- end}}
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Name}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

type listingEntry struct {
	Name string
	Href string
}

type listing struct {
	Path    string
	Parent  bool
	Entries []listingEntry
}

// newListing builds an Apache-style index. Directories get a trailing "/", hidden
// entries are left out, and names are sorted.
func newListing(urlPath string, entries []fs.DirEntry) listing {
	l := listing{Path: urlPath, Parent: urlPath != "/"}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		href := url.PathEscape(name)
		if e.IsDir() {
			name += "/"
			href += "/"
		}
		l.Entries = append(l.Entries, listingEntry{Name: name, Href: href})
	}
	sort.Slice(l.Entries, func(i, j int) bool { return l.Entries[i].Name < l.Entries[j].Name })
	return l
}
