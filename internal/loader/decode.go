package loader

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taxonhq/taxon/internal/schema"
)

// File-level document shapes for the fixed-name descriptors.
type versionFile struct {
	Version string `yaml:"version"`
}

type categoriesFile struct {
	Caption     string                      `yaml:"caption"`
	Description string                      `yaml:"description"`
	Attributes  map[string]*schema.Category `yaml:"attributes"`
}

type dictionaryFile struct {
	Caption     string                       `yaml:"caption"`
	Description string                       `yaml:"description"`
	Attributes  map[string]*schema.Attribute `yaml:"attributes"`
}

// decodeDocument reads, vets, and decodes one descriptor file. The
// document is decoded twice: once loosely for structural vetting,
// once into the typed record. Every failure here is fatal.
func decodeDocument(path string, kind Kind, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return wrapf(ErrCodeMissing, path, err, "reading descriptor")
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return wrapf(ErrCodeDecode, path, err, "malformed descriptor")
	}
	if err := vetDocument(doc, kind); err != nil {
		return wrapf(ErrCodeStructure, path, err, "descriptor failed structural check")
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return wrapf(ErrCodeDecode, path, err, "decoding descriptor")
	}
	return nil
}

// CheckFile decodes and vets a single descriptor file without loading
// the rest of the tree. Used by collect-all validation to report every
// malformed file at once instead of stopping at the first.
func CheckFile(path string, kind Kind) error {
	switch kind {
	case KindClass:
		_, err := decodeClass(path)
		return err
	case KindObject:
		_, err := decodeObject(path)
		return err
	case KindCategories:
		var cf categoriesFile
		return decodeDocument(path, KindCategories, &cf)
	case KindDictionary:
		var df dictionaryFile
		return decodeDocument(path, KindDictionary, &df)
	case KindVersion:
		var vf versionFile
		return decodeDocument(path, KindVersion, &vf)
	case KindFragment:
		_, err := decodeFragment(path)
		return err
	default:
		return errf(ErrCodeGeneric, path, "unknown descriptor kind %q", kind)
	}
}

func decodeClass(path string) (*schema.ClassDescriptor, error) {
	cls := &schema.ClassDescriptor{}
	if err := decodeDocument(path, KindClass, cls); err != nil {
		return nil, err
	}
	if cls.Name == "" {
		return nil, errf(ErrCodeStructure, path, "class descriptor has no type key")
	}
	return cls, nil
}

func decodeObject(path string) (*schema.ObjectDescriptor, error) {
	obj := &schema.ObjectDescriptor{}
	if err := decodeDocument(path, KindObject, obj); err != nil {
		return nil, err
	}
	if obj.Name == "" {
		return nil, errf(ErrCodeStructure, path, "object descriptor has no type key")
	}
	return obj, nil
}

func decodeFragment(path string) (*schema.Fragment, error) {
	frag := &schema.Fragment{}
	if err := decodeDocument(path, KindFragment, frag); err != nil {
		return nil, err
	}
	return frag, nil
}
