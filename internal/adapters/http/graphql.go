package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/floorplan/internal/core/domain"
	"github.com/samirrijal/floorplan/internal/core/layout"
	"github.com/samirrijal/floorplan/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
		},
	})

	roomType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Room",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"apartment_id": &graphql.Field{Type: graphql.String},
			"type":         &graphql.Field{Type: graphql.String},
			"rings": &graphql.Field{
				Type:        graphql.NewList(graphql.NewList(pointType)),
				Description: "Closed outer ring of each polygon",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					room := p.Source.(domain.Room)
					rings := make([][]domain.Point, len(room.Shape))
					for i, poly := range room.Shape {
						rings[i] = poly.Outer
					}
					return rings, nil
				},
			},
			"area": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return geospatial.Area(p.Source.(domain.Room).Shape), nil
				},
			},
		},
	})

	apartmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Apartment",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"created_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return apartmentOf(p.Source).CreatedAt.Format(time.RFC3339), nil
				},
			},
			"rooms": &graphql.Field{
				Type: graphql.NewList(roomType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Rooms.ListByApartment(p.Context, apartmentOf(p.Source).ID)
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"apartments": &graphql.Field{
				Type:        graphql.NewList(apartmentType),
				Description: "List apartments",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultLimit},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit := p.Args["limit"].(int)
					offset := p.Args["offset"].(int)
					apts, _, err := deps.Apartments.List(p.Context, limit, offset)
					return apts, err
				},
			},
			"apartment": &graphql.Field{
				Type:        apartmentType,
				Description: "Get an apartment by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Apartments.GetByID(p.Context, p.Args["id"].(string))
				},
			},
			"rooms": &graphql.Field{
				Type:        graphql.NewList(roomType),
				Description: "Rooms of an apartment in insertion order",
				Args: graphql.FieldConfigArgument{
					"apartment_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Rooms.ListByApartment(p.Context, p.Args["apartment_id"].(string))
				},
			},
			"parseLayout": &graphql.Field{
				Type:        graphql.NewList(roomType),
				Description: "Parse a layout without storing it",
				Args: graphql.FieldConfigArgument{
					"layout": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return layout.ParseLayout(p.Args["layout"].(string))
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"importPrompt": &graphql.Field{
				Type:        apartmentType,
				Description: "Create an apartment from a prompt",
				Args: graphql.FieldConfigArgument{
					"prompt": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					apt, _, err := deps.Apartments.ImportPrompt(p.Context, p.Args["prompt"].(string))
					return apt, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// apartmentOf accepts both value and pointer sources.
func apartmentOf(src interface{}) domain.Apartment {
	switch a := src.(type) {
	case *domain.Apartment:
		return *a
	case domain.Apartment:
		return a
	}
	return domain.Apartment{}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
