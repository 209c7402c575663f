package pipeline

import (
	"encoding/base64"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxInlineImageSize caps the size of an image embedded as a data: URI.
// Larger images are referenced by file:// URL instead.
const maxInlineImageSize = 16 << 20

// InlineLocalImages makes the document independent of its location on disk.
// Relative img[src] paths under sourceDir are embedded as data: URIs, and
// relative a[href] paths become absolute file:// URLs. Images that cannot
// be read fall back to a file:// URL. If sourceDir is empty, returns the
// HTML unchanged.
//
// Not rewritten:
//   - srcset and CSS url() references
//   - absolute paths, URLs and anchors
//   - paths escaping sourceDir
func InlineLocalImages(htmlContent, sourceDir string) (string, error) {
	// Nothing to rewrite without a base directory or candidate tags
	if sourceDir == "" || !hasLocalReferences(htmlContent) {
		return htmlContent, nil
	}

	// Resolve sourceDir to absolute path
	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, absSourceDir)

	return renderHTML(doc, isFragment)
}

// hasLocalReferences is a cheap pre-check that skips the parse/render round
// trip for documents without images or links.
func hasLocalReferences(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "<img") || strings.Contains(lower, "<a ")
}

// parseHTML parses HTML content, handling both full documents and fragments.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	// Full documents go through html.Parse
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragments are parsed in a <body> context
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	// Wrap fragment nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the tree back to a string. Fragments render their
// children only, so no <html><body> wrapper is added.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// rewriteNode walks the tree and rewrites img[src] and a[href] in place.
func rewriteNode(n *html.Node, sourceDir string) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Img:
			rewriteAttr(n, "src", sourceDir, true)
		case atom.A:
			rewriteAttr(n, "href", sourceDir, false)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, sourceDir)
	}
}

// rewriteAttr rewrites one relative attribute. With inline set, readable
// images become data: URIs; everything else becomes a file:// URL.
func rewriteAttr(n *html.Node, attrName, sourceDir string, inline bool) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		// Links may carry a fragment; only the path part is resolved.
		relPath, fragment := attr.Val, ""
		if u, err := url.Parse(attr.Val); err == nil && u.Path != "" {
			relPath, fragment = u.Path, u.Fragment
		}

		absPath := filepath.Join(sourceDir, filepath.FromSlash(relPath))

		// Security: reject paths escaping sourceDir
		if !isPathUnderDir(absPath, sourceDir) {
			continue
		}

		if inline {
			if dataURI, ok := imageDataURI(absPath); ok {
				n.Attr[i].Val = dataURI
				continue
			}
		}
		n.Attr[i].Val = pathToFileURL(absPath)
		if fragment != "" {
			n.Attr[i].Val += "#" + fragment
		}
	}
}

// imageDataURI reads an image and encodes it as a data: URI.
func imageDataURI(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() > maxInlineImageSize {
		return "", false
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is confined to the source directory
	if err != nil {
		return "", false
	}

	// Extension first, content sniffing as fallback
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mediaType == "" {
		mediaType = http.DetectContentType(data)
	}
	// Drop parameters such as "; charset=utf-8"
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	// URLs, data URIs and anchors stay as they are
	lower := strings.ToLower(path)
	for _, prefix := range []string{"http://", "https://", "file://", "data:", "mailto:", "//", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}

	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	// Ensure dir ends with separator for prefix matching
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	p := filepath.ToSlash(absPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // Windows drive letter
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
