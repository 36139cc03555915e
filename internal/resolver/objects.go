package resolver

import "github.com/taxonhq/taxon/internal/schema"

// ResolveObjects flattens object extends chains, then drops descriptors
// whose name carries the reserved abstract prefix, leaving only
// concrete, directly-usable objects with stamped provenance.
func ResolveObjects(objects map[string]*schema.ObjectDescriptor) (map[string]*schema.ObjectDescriptor, error) {
	resolved, err := ResolveObjectExtends(objects)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*schema.ObjectDescriptor)
	for name, obj := range resolved {
		if schema.IsAbstractName(name) {
			continue
		}
		for _, attr := range obj.Attributes.Attrs {
			if attr.Source == "" {
				attr.Source = obj.Name
			}
		}
		out[name] = obj
	}
	return out, nil
}
