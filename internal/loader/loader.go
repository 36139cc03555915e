// Package loader discovers and decodes a descriptor tree into raw,
// pre-resolution descriptor maps: base files first, extension overlays
// deep-merged on top, include fragments expanded. Traversal is pure
// (Discover yields paths as values); decoding and diagnostics happen
// in Load. Every structural problem is returned as a fatal error value
// rather than aborting the process here.
package loader

import (
	"path/filepath"
	"strings"

	"github.com/untillpro/goutils/logger"

	"github.com/taxonhq/taxon/internal/merge"
	"github.com/taxonhq/taxon/internal/schema"
)

// Options locate the descriptor tree. No global configuration is
// consulted; callers pass both paths explicitly.
type Options struct {
	Root          string
	ExtensionsDir string // defaults to schema.DefaultExtensionsDir
}

func (o Options) extensionsDir() string {
	if o.ExtensionsDir == "" {
		return schema.DefaultExtensionsDir
	}
	return o.ExtensionsDir
}

// RawModel is the loader's output: fully merged but not yet resolved.
// Extends references are still present and classes may still lack uids.
type RawModel struct {
	Version          string
	VersionDefaulted bool
	Categories       map[string]*schema.Category
	Dictionary       map[string]*schema.Attribute
	Classes          map[string]*schema.ClassDescriptor
	Objects          map[string]*schema.ObjectDescriptor
}

// Load reads the whole descriptor tree. Extension-tree files deep-merge
// over same-keyed base-tree content; include references are expanded;
// attributes introduced by extension files are stamped with the
// extension's name as provenance.
func Load(opts Options) (*RawModel, error) {
	set, err := Discover(opts.Root, opts.extensionsDir())
	if err != nil {
		return nil, err
	}

	raw := &RawModel{
		Categories: make(map[string]*schema.Category),
		Dictionary: make(map[string]*schema.Attribute),
		Classes:    make(map[string]*schema.ClassDescriptor),
		Objects:    make(map[string]*schema.ObjectDescriptor),
	}

	if err := loadVersion(set.Version, raw); err != nil {
		return nil, err
	}
	if err := loadCategories(set.Categories, raw); err != nil {
		return nil, err
	}
	if err := loadDictionary(set.Dictionary, raw); err != nil {
		return nil, err
	}

	extRoot := filepath.Join(opts.Root, opts.extensionsDir())
	for _, path := range set.Classes {
		cls, err := decodeClass(path)
		if err != nil {
			return nil, err
		}
		if ext := extensionName(extRoot, path); ext != "" {
			stampAttributes(cls.Attributes.Attrs, ext)
		}
		if base, ok := raw.Classes[cls.Name]; ok {
			raw.Classes[cls.Name] = merge.Class(base, cls)
		} else {
			raw.Classes[cls.Name] = cls
		}
	}
	for _, path := range set.Objects {
		obj, err := decodeObject(path)
		if err != nil {
			return nil, err
		}
		if ext := extensionName(extRoot, path); ext != "" {
			stampAttributes(obj.Attributes.Attrs, ext)
		}
		if base, ok := raw.Objects[obj.Name]; ok {
			raw.Objects[obj.Name] = merge.Object(base, obj)
		} else {
			raw.Objects[obj.Name] = obj
		}
	}

	frags := newFragments(opts.Root)
	for _, cls := range raw.Classes {
		if err := frags.resolveClassIncludes(cls); err != nil {
			return nil, err
		}
	}
	for _, obj := range raw.Objects {
		if err := frags.resolveObjectIncludes(obj); err != nil {
			return nil, err
		}
	}

	deriveCaptions(raw)

	if logger.IsVerbose() {
		logger.Verbose("loaded descriptor tree", "root", opts.Root,
			"classes", len(raw.Classes), "objects", len(raw.Objects),
			"categories", len(raw.Categories), "dictionary", len(raw.Dictionary))
	}
	return raw, nil
}

func loadVersion(path string, raw *RawModel) error {
	if path == "" {
		raw.Version = schema.DefaultVersion
		raw.VersionDefaulted = true
		logger.Warning("no version file in descriptor tree, defaulting to", schema.DefaultVersion)
		return nil
	}
	var vf versionFile
	if err := decodeDocument(path, KindVersion, &vf); err != nil {
		return err
	}
	raw.Version = vf.Version
	return nil
}

func loadCategories(paths []string, raw *RawModel) error {
	for _, path := range paths {
		var cf categoriesFile
		if err := decodeDocument(path, KindCategories, &cf); err != nil {
			return err
		}
		for name, cat := range cf.Attributes {
			cat.Name = name
			if base, ok := raw.Categories[name]; ok {
				raw.Categories[name] = merge.Category(base, cat)
			} else {
				raw.Categories[name] = cat
			}
		}
	}
	return nil
}

func loadDictionary(paths []string, raw *RawModel) error {
	for _, path := range paths {
		var df dictionaryFile
		if err := decodeDocument(path, KindDictionary, &df); err != nil {
			return err
		}
		for name, attr := range df.Attributes {
			if base, ok := raw.Dictionary[name]; ok {
				raw.Dictionary[name] = merge.Attribute(base, attr)
			} else {
				raw.Dictionary[name] = attr
			}
		}
	}
	return nil
}

// stampAttributes marks every attribute that does not yet carry a
// provenance marker as coming from source.
func stampAttributes(attrs map[string]*schema.Attribute, source string) {
	for _, attr := range attrs {
		if attr.Source == "" {
			attr.Source = source
		}
	}
}

// extensionName returns the extension directory owning path, or ""
// for base-tree files.
func extensionName(extRoot, path string) string {
	rel, err := filepath.Rel(extRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
	return parts[0]
}

// deriveCaptions fills missing display captions from descriptor names.
func deriveCaptions(raw *RawModel) {
	for name, cat := range raw.Categories {
		if cat.Caption == "" {
			cat.Caption = schema.DeriveCaption(name)
		}
	}
	for name, cls := range raw.Classes {
		if cls.Caption == "" {
			cls.Caption = schema.DeriveCaption(name)
		}
	}
	for name, obj := range raw.Objects {
		if obj.Caption == "" {
			obj.Caption = schema.DeriveCaption(name)
		}
	}
}
