package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPaginate struct {
	limit int64
	page  int64
}

func newMongoPaginate(limit, page int) *mongoPaginate {
	if page < 1 {
		page = 1
	}
	return &mongoPaginate{
		limit: int64(limit),
		page:  int64(page),
	}
}

// getPaginatedOpts returns the default listing order with skip and limit applied.
// A non-positive limit returns every record.
func (mp *mongoPaginate) getPaginatedOpts() *options.FindOptions {
	fOpt := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if mp.limit <= 0 {
		return fOpt
	}
	skip := mp.page*mp.limit - mp.limit
	return fOpt.SetLimit(mp.limit).SetSkip(skip)
}
