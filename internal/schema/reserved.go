package schema

// reservedHandles are element attribute names the engine forbids custom
// fields from shadowing. Entry type layouts must never reference them.
var reservedHandles = map[string]struct{}{
	"ancestors":   {},
	"archived":    {},
	"attributes":  {},
	"author":      {},
	"authorId":    {},
	"children":    {},
	"content":     {},
	"dateCreated": {},
	"dateDeleted": {},
	"dateUpdated": {},
	"descendants": {},
	"enabled":     {},
	"expiryDate":  {},
	"id":          {},
	"level":       {},
	"link":        {},
	"localized":   {},
	"next":        {},
	"parent":      {},
	"parents":     {},
	"postDate":    {},
	"prev":        {},
	"ref":         {},
	"searchScore": {},
	"siblings":    {},
	"site":        {},
	"slug":        {},
	"status":      {},
	"title":       {},
	"uid":         {},
	"uri":         {},
	"url":         {},
	"username":    {},
}

// IsReservedHandle reports whether the handle collides with a built-in
// element attribute. The check is case-sensitive, matching the engine.
func IsReservedHandle(handle string) bool {
	_, ok := reservedHandles[handle]
	return ok
}
