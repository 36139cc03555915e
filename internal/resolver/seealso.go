package resolver

import "github.com/taxonhq/taxon/internal/schema"

// LinkSeeAlso resolves each class's see_also names against the full
// pre-filter class set into {name, caption} pairs, preserving source
// order. Unresolvable names are silently dropped; a class whose list
// resolves empty keeps no see_also field at all.
func LinkSeeAlso(classes map[string]*schema.ClassDescriptor) {
	for _, cls := range classes {
		if len(cls.SeeAlso) == 0 {
			cls.SeeAlso = nil
			continue
		}
		var refs []schema.SeeAlsoRef
		for _, name := range cls.SeeAlso {
			target, ok := classes[name]
			if !ok {
				continue
			}
			refs = append(refs, schema.SeeAlsoRef{Name: name, Caption: target.Caption})
		}
		cls.SeeAlsoRefs = refs
		cls.SeeAlso = nil
	}
}
