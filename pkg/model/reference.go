package model

import "strings"

const (
	referenceCollectionKey = "reference.collection"
	referenceDisplayKey    = "reference.display"
	relationshipTargetKey  = "relationship.target"
)

// EnsureReference hydrates the typed reference from metadata and mirrors the
// canonical dotted keys back into the metadata map. Fields whose kind is not
// reference are left untouched.
func EnsureReference(field *FieldSpec) {
	if field == nil || field.Kind != KindReference {
		return
	}

	if field.Reference == nil {
		ref, ok := referenceFromMetadata(field.Metadata)
		if !ok {
			return
		}
		field.Reference = ref
	}

	field.Reference.Collection = strings.TrimSpace(field.Reference.Collection)
	field.Reference.DisplayField = strings.TrimSpace(field.Reference.DisplayField)
	field.Metadata = syncReferenceMetadata(field.Metadata, field.Reference)
}

func referenceFromMetadata(metadata map[string]string) (*Reference, bool) {
	if len(metadata) == 0 {
		return nil, false
	}

	collection := strings.TrimSpace(metadata[referenceCollectionKey])
	if collection == "" {
		collection = strings.TrimSpace(metadata[relationshipTargetKey])
	}
	if collection == "" {
		return nil, false
	}

	return &Reference{
		Collection:   collection,
		DisplayField: strings.TrimSpace(metadata[referenceDisplayKey]),
	}, true
}

func syncReferenceMetadata(metadata map[string]string, ref *Reference) map[string]string {
	if ref == nil {
		return metadata
	}
	if metadata == nil {
		metadata = make(map[string]string)
	}
	metadata[referenceCollectionKey] = ref.Collection
	if ref.DisplayField != "" {
		metadata[referenceDisplayKey] = ref.DisplayField
	} else {
		delete(metadata, referenceDisplayKey)
	}
	delete(metadata, relationshipTargetKey)
	return metadata
}

func cloneReference(ref *Reference) *Reference {
	if ref == nil {
		return nil
	}
	cloned := *ref
	return &cloned
}
