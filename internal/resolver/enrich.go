package resolver

import (
	"strconv"

	"github.com/untillpro/goutils/logger"

	"github.com/taxonhq/taxon/internal/schema"
)

// EnrichClasses drops classes without a resolved uid (they existed only
// to be extended from) and, for each survivor, synthesizes the class_id,
// category_id, and event_uid enumerations and stamps attribute
// provenance. A class referencing an unknown category is fatal.
func EnrichClasses(classes map[string]*schema.ClassDescriptor, categories map[string]*schema.Category) (map[string]*schema.ClassDescriptor, error) {
	out := make(map[string]*schema.ClassDescriptor)
	for name, cls := range classes {
		if cls.UID == nil {
			continue
		}
		if err := enrichClass(cls, categories); err != nil {
			return nil, err
		}
		out[name] = cls
	}
	return out, nil
}

func enrichClass(cls *schema.ClassDescriptor, categories map[string]*schema.Category) error {
	uid := *cls.UID
	if cls.Attributes.Attrs == nil {
		cls.Attributes.Attrs = make(map[string]*schema.Attribute)
	}

	cls.Attributes.Attrs[schema.AttrClassID] = &schema.Attribute{
		Caption: "Class ID",
		Type:    "integer_t",
		Enum: map[string]*schema.EnumMember{
			strconv.Itoa(uid): {Name: cls.Name, Description: cls.Description},
		},
		Source: cls.Name,
	}

	cat, ok := categories[cls.Category]
	if !ok {
		return &ResolveError{
			Code: ErrCodeInvalidCategory, Name: cls.Name, Ref: cls.Category,
			Message: "invalid category",
		}
	}
	// The category record embeds without its uid-range marker.
	cls.Attributes.Attrs[schema.AttrCategoryID] = &schema.Attribute{
		Caption: "Category ID",
		Type:    "integer_t",
		Enum: map[string]*schema.EnumMember{
			strconv.Itoa(cat.UID): {Name: cat.Caption, Description: cat.Description},
		},
		Source: cls.Name,
	}

	cls.Attributes.Attrs[schema.AttrEventUID] = &schema.Attribute{
		Caption: "Event UID",
		Type:    "integer_t",
		Enum:    eventUIDEnum(cls, uid),
		Source:  cls.Name,
	}

	for _, attr := range cls.Attributes.Attrs {
		if attr.Source == "" {
			attr.Source = cls.Name
		}
	}
	return nil
}

// eventUIDEnum synthesizes the per-class event enumeration: one entry
// per disposition value at uid*1000+code, a class-specific Unknown
// sentinel at uid*1000, and the Other sentinel at -1. Sentinels are
// injected unconditionally, overriding colliding disposition codes.
func eventUIDEnum(cls *schema.ClassDescriptor, uid int) map[string]*schema.EnumMember {
	enum := make(map[string]*schema.EnumMember)
	if disp, ok := cls.Attributes.Attrs[schema.AttrDispositionID]; ok {
		for key, member := range disp.Enum {
			code, err := strconv.Atoi(key)
			if err != nil {
				logger.Warning("class", cls.Name, "has non-numeric disposition code", key)
				continue
			}
			enum[strconv.Itoa(uid*schema.EventUIDMultiplier+code)] = &schema.EnumMember{
				Name: cls.Caption + ": " + member.Name,
			}
		}
	}
	enum[strconv.Itoa(uid*schema.EventUIDMultiplier)] = &schema.EnumMember{
		Name: cls.Caption + ": Unknown",
	}
	enum[strconv.Itoa(schema.EventUIDOther)] = &schema.EnumMember{
		Name: cls.Caption + ": Other",
	}
	return enum
}
