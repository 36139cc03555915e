package loader

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Fixed names inside a descriptor tree.
const (
	versionFileName    = "version"
	categoriesFileName = "categories"
	dictionaryFileName = "dictionary"
	eventsDirName      = "events"
	objectsDirName     = "objects"
)

var descriptorExts = []string{".json", ".yaml", ".yml"}

// FileSet is the outcome of the pure discovery pass: candidate file
// paths grouped by entity kind, base tree first, extension trees after
// in lexical order. No file content is read during discovery, so tests
// can assert traversal behavior without decoding anything.
type FileSet struct {
	Version    string   // empty when the tree has no version file
	Categories []string // base categories file, then one per extension
	Dictionary []string // base dictionary file, then one per extension
	Classes    []string
	Objects    []string
	Extensions []string // extension directory names, lexical order
}

// Discover walks the descriptor tree rooted at root and the overlay
// trees under extensionsDir. Traversal failures (unreadable directory)
// are returned as values; a missing events/ or objects/ subtree simply
// yields no files of that kind.
func Discover(root, extensionsDir string) (*FileSet, error) {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, errf(ErrCodeNoRoot, root, "descriptor root not found")
	}
	if err != nil {
		return nil, wrapf(ErrCodeNoRoot, root, err, "descriptor root not accessible")
	}
	if !info.IsDir() {
		return nil, errf(ErrCodeNoRoot, root, "descriptor root is not a directory")
	}

	set := &FileSet{}
	if err := discoverTree(root, set); err != nil {
		return nil, err
	}

	extRoot := filepath.Join(root, extensionsDir)
	entries, err := os.ReadDir(extRoot)
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, wrapf(ErrCodeScan, extRoot, err, "reading extensions directory")
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		set.Extensions = append(set.Extensions, entry.Name())
		if err := discoverTree(filepath.Join(extRoot, entry.Name()), set); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// discoverTree collects the fixed-name files and the events/objects
// subtrees of one tree (the base root or one extension root).
func discoverTree(dir string, set *FileSet) error {
	if p := findFixedFile(dir, versionFileName); p != "" && set.Version == "" {
		set.Version = p
	}
	if p := findFixedFile(dir, categoriesFileName); p != "" {
		set.Categories = append(set.Categories, p)
	}
	if p := findFixedFile(dir, dictionaryFileName); p != "" {
		set.Dictionary = append(set.Dictionary, p)
	}

	classes, err := walkDescriptors(filepath.Join(dir, eventsDirName))
	if err != nil {
		return err
	}
	set.Classes = append(set.Classes, classes...)

	objects, err := walkDescriptors(filepath.Join(dir, objectsDirName))
	if err != nil {
		return err
	}
	set.Objects = append(set.Objects, objects...)
	return nil
}

// walkDescriptors returns every descriptor file under dir in lexical
// order. A missing dir yields no files; an unreadable one is fatal.
func walkDescriptors(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return wrapf(ErrCodeScan, path, err, "walking descriptor directory")
		}
		if !d.IsDir() && isDescriptorFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func findFixedFile(dir, stem string) string {
	for _, ext := range descriptorExts {
		p := filepath.Join(dir, stem+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func isDescriptorFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range descriptorExts {
		if ext == e {
			return true
		}
	}
	return false
}
