package loader

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Kind identifies the expected entity kind of a descriptor file.
type Kind string

const (
	KindClass      Kind = "class"
	KindObject     Kind = "object"
	KindCategories Kind = "categories"
	KindDictionary Kind = "dictionary"
	KindVersion    Kind = "version"
	KindFragment   Kind = "fragment"
)

// vetSchema is the structural contract every descriptor document must
// satisfy before typed decoding. Structures stay open (`...`) because
// descriptors carry dynamic keys; only the shapes the resolution
// engine depends on are pinned.
const vetSchema = `
#Attributes: {
	include?: string | [...string]
	...
}

#Class: {
	type!:       string
	caption?:    string
	description?: string
	uid?:        int
	category?:   string
	extends?:    string
	include?:    string | [...string]
	see_also?:   [...string]
	attributes?: #Attributes
	...
}

#Object: {
	type!:       string
	caption?:    string
	description?: string
	extends?:    string
	include?:    string | [...string]
	attributes?: #Attributes
	...
}

#Categories: {
	caption?:    string
	description?: string
	attributes!: {[string]: {
		uid!:        int
		caption?:    string
		description?: string
		uid_range?:  string
		...
	}}
	...
}

#Dictionary: {
	caption?:    string
	description?: string
	attributes!: {...}
	...
}

#Version: {
	version!: string
	...
}

#Fragment: {
	caption?:    string
	description?: string
	attributes?: #Attributes
	...
}
`

var (
	vetOnce  sync.Once
	vetDefs  cue.Value
	vetPaths = map[Kind]string{
		KindClass:      "#Class",
		KindObject:     "#Object",
		KindCategories: "#Categories",
		KindDictionary: "#Dictionary",
		KindVersion:    "#Version",
		KindFragment:   "#Fragment",
	}
)

func vetDefinitions() cue.Value {
	vetOnce.Do(func() {
		vetDefs = cuecontext.New().CompileString(vetSchema)
	})
	return vetDefs
}

// vetDocument unifies a decoded document with the structural schema for
// its kind. Any mismatch is the fatal "cannot decode" tier.
func vetDocument(doc map[string]any, kind Kind) error {
	defs := vetDefinitions()
	if err := defs.Err(); err != nil {
		return fmt.Errorf("compiling structural schema: %w", err)
	}
	def := defs.LookupPath(cue.ParsePath(vetPaths[kind]))
	if err := def.Err(); err != nil {
		return fmt.Errorf("looking up %s schema: %w", kind, err)
	}
	v := defs.Context().Encode(doc)
	if err := v.Err(); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	unified := def.Unify(v)
	if err := unified.Err(); err != nil {
		return err
	}
	return unified.Validate(cue.Concrete(false))
}
