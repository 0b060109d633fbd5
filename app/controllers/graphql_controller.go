package controllers

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	gql "github.com/shashiranjanraj/shopfront/pkg/graphql"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.Float},
		"stock":       &graphql.Field{Type: graphql.Int},
	},
})

// NewGraphQLHandler serves the read-only catalogue query:
//
//	{ products { id name stock } product(id: "...") { price } }
func NewGraphQLHandler(service *services.ProductService) (http.HandlerFunc, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					views, err := service.List(p.Context)
					if err != nil {
						return nil, clientError(err)
					}
					return views, nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					view, err := service.Get(p.Context, id)
					if err != nil {
						return nil, clientError(err)
					}
					return view, nil
				},
			},
		},
	})

	schema, err := gql.NewSchema(query)
	if err != nil {
		return nil, err
	}
	return gql.Handler(schema), nil
}

// clientError keeps upstream causes out of GraphQL error messages.
func clientError(err error) error {
	return errors.New(apperr.Message(err))
}
