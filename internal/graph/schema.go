package graph

import (
	"errors"
	"fmt"

	"finanz-server/internal/models"

	"github.com/graphql-go/graphql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewSchema builds the read-mostly GraphQL surface: users and
// accounts, plus user creation. Everything else goes through REST.
func NewSchema(db *gorm.DB) (graphql.Schema, error) {
	accountType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Account",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"userId":   &graphql.Field{Type: graphql.String, Resolve: fieldOf(func(a *models.Account) interface{} { return a.UserID })},
			"currency": &graphql.Field{Type: graphql.String},
			"currentValue": &graphql.Field{
				Type: graphql.String,
				Resolve: fieldOf(func(a *models.Account) interface{} {
					return a.CurrentValue.StringFixed(2)
				}),
			},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String},
			"name":  &graphql.Field{Type: graphql.String},
			"email": &graphql.Field{Type: graphql.String},
			"account": &graphql.Field{
				Type: accountType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user, ok := p.Source.(*models.User)
					if !ok {
						return nil, nil
					}
					var account models.Account
					err := db.First(&account, "user_id = ?", user.ID).Error
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return &account, nil
				},
			},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"users": &graphql.Field{
				Type: graphql.NewList(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var users []*models.User
					if err := db.Find(&users).Error; err != nil {
						return nil, err
					}
					return users, nil
				},
			},
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					var user models.User
					err := db.First(&user, "id = ?", id).Error
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return &user, nil
				},
			},
			"accounts": &graphql.Field{
				Type: graphql.NewList(accountType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var accounts []*models.Account
					if err := db.Find(&accounts).Error; err != nil {
						return nil, err
					}
					return accounts, nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					email, _ := p.Args["email"].(string)
					password, _ := p.Args["password"].(string)

					var count int64
					if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
						return nil, err
					}
					if count > 0 {
						return nil, fmt.Errorf("email already registered")
					}

					hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
					if err != nil {
						return nil, err
					}
					user := models.User{Name: name, Email: email, PasswordHash: string(hash)}
					if err := db.Create(&user).Error; err != nil {
						return nil, err
					}
					return &user, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// fieldOf adapts a typed accessor to a graphql resolver.
func fieldOf(get func(*models.Account) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		account, ok := p.Source.(*models.Account)
		if !ok {
			return nil, nil
		}
		return get(account), nil
	}
}
