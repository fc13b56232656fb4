// Package graph defines the read-only GraphQL market schema: an
// alternative browse surface over the live snapshot and the category
// reference rows.
package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/pkg/gql"
)

var listingType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Listing",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.Int},
		"crop":       &graphql.Field{Type: graphql.String},
		"category":   &graphql.Field{Type: graphql.String},
		"variety":    &graphql.Field{Type: graphql.String},
		"quality":    &graphql.Field{Type: graphql.String},
		"quantity":   &graphql.Field{Type: graphql.Float},
		"unit":       &graphql.Field{Type: graphql.String},
		"price":      &graphql.Field{Type: graphql.Float},
		"district":   &graphql.Field{Type: graphql.String},
		"farmerName": &graphql.Field{Type: graphql.String},
		"photoUrl":   &graphql.Field{Type: graphql.String},
		"listedAt":   &graphql.Field{Type: graphql.DateTime},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.Int},
		"name": &graphql.Field{Type: graphql.String},
	},
})

// NewSchema builds the query root. Listings come from the live feed, so
// the GraphQL surface sees exactly what the REST browse sees.
func NewSchema(feed *services.LiveFeed) (graphql.Schema, error) {
	categories := repositories.NewCategoryRepository()

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"listings": &graphql.Field{
				Type: graphql.NewList(listingType),
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"maxPrice": &graphql.ArgumentConfig{Type: graphql.Float},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					criteria := services.Criteria{Sort: services.SortNewest}
					if category, ok := p.Args["category"].(string); ok {
						criteria.Category = category
					}
					if max, ok := p.Args["maxPrice"].(float64); ok {
						criteria.MaxPrice = &max
					}

					rows := services.Search(services.Annotate(feed.Snapshot(), nil), criteria)
					if limit, ok := p.Args["limit"].(int); ok && limit > 0 && limit < len(rows) {
						rows = rows[:limit]
					}

					out := make([]map[string]interface{}, 0, len(rows))
					for _, row := range rows {
						out = append(out, listingMap(row.Listing))
					}
					return out, nil
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					active, err := categories.Active()
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, 0, len(active))
					for _, cat := range active {
						out = append(out, map[string]interface{}{
							"id":   int(cat.ID),
							"name": cat.Name,
						})
					}
					return out, nil
				},
			},
		},
	})

	return gql.NewSchema(query)
}

func listingMap(l models.Listing) map[string]interface{} {
	return map[string]interface{}{
		"id":         int(l.ID),
		"crop":       l.Crop,
		"category":   l.Category,
		"variety":    l.Variety,
		"quality":    l.Quality,
		"quantity":   l.Quantity,
		"unit":       l.Unit,
		"price":      l.Price,
		"district":   l.District,
		"farmerName": l.FarmerName,
		"photoUrl":   l.PhotoURL,
		"listedAt":   l.ListedAt,
	}
}
