package graph

import "github.com/graphql-go/graphql"

var friendType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Friend",
	Fields: graphql.Fields{
		"firstName": &graphql.Field{Type: graphql.String},
		"lastName":  &graphql.Field{Type: graphql.String},
		"email":     &graphql.Field{Type: graphql.String},
	},
})

var positionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Position",
	Fields: graphql.Fields{
		"email":       &graphql.Field{Type: graphql.String},
		"name":        &graphql.Field{Type: graphql.String},
		"longitude":   &graphql.Field{Type: graphql.Float},
		"latitude":    &graphql.Field{Type: graphql.Float},
		"lastUpdated": &graphql.Field{Type: graphql.DateTime},
		"inGameArea":  &graphql.Field{Type: graphql.Boolean},
	},
})

var nearbyFriendType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NearbyFriend",
	Fields: graphql.Fields{
		"email":     &graphql.Field{Type: graphql.String},
		"name":      &graphql.Field{Type: graphql.String},
		"longitude": &graphql.Field{Type: graphql.Float},
		"latitude":  &graphql.Field{Type: graphql.Float},
		"distance":  &graphql.Field{Type: graphql.Float, Description: "Meters from the search center"},
	},
})

var gameAreaType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "GameArea",
	Description: "GeoJSON Polygon",
	Fields: graphql.Fields{
		"type":        &graphql.Field{Type: graphql.String},
		"coordinates": &graphql.Field{Type: graphql.NewList(graphql.NewList(graphql.NewList(graphql.Float)))},
	},
})

// Fields are nullable so missing values reach validation and come back as VALIDATION_ERROR
var friendInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "FriendInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"firstName": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"lastName":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"password":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"email":     &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var positionInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "PositionInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"longitude": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"latitude":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
	},
})
