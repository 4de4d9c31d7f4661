// Package objectid translates between the 24-character hex identifiers used
// on the wire and the store's primitive.ObjectID.
//
//	id, ok := objectid.Parse(c.Param("id"))
//	if !ok {
//	    c.Fail(apperr.InvalidID("shop"))
//	    return
//	}
package objectid

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Parse decodes s into an ObjectID. ok is false for anything that is not a
// 24-character hex string; Parse never panics.
func Parse(s string) (primitive.ObjectID, bool) {
	if len(s) != 24 {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
