package jit

import (
	"context"
	"errors"
	"testing"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- tiny AST builders, since this module does not implement a query parser (see Non-goals). ---

func name(n string) *ast.Name { return &ast.Name{Name: n} }

func field(responseName string, args []*ast.Argument, directives []*ast.Directive, sub *ast.SelectionSet) *ast.Field {
	f := &ast.Field{Name: name(responseName), Arguments: args, Directives: directives, SelectionSet: sub}
	return f
}

func aliasedField(alias, fieldName string, sub *ast.SelectionSet) *ast.Field {
	return &ast.Field{Alias: name(alias), Name: name(fieldName), SelectionSet: sub}
}

func sel(fields ...ast.Selection) *ast.SelectionSet {
	return &ast.SelectionSet{Selections: fields}
}

func op(opType string, vars []*ast.VariableDefinition, selections *ast.SelectionSet) *ast.OperationDefinition {
	var ot *ast.OperationType
	if opType != "" {
		ot = &ast.OperationType{Value: opType}
	}
	return &ast.OperationDefinition{OperationType: ot, VariableDefinitions: vars, SelectionSet: selections}
}

func doc(operations ...*ast.OperationDefinition) *ast.Document {
	d := &ast.Document{}
	for _, o := range operations {
		d.Definitions = append(d.Definitions, o)
	}
	return d
}

// asMap casts a response value to *OrderedMap, the type every completed object/abstract position
// is written as so the wire encoding preserves selection order.
func asMap(t *testing.T, v interface{}) *OrderedMap {
	t.Helper()
	m, ok := v.(*OrderedMap)
	require.True(t, ok)
	return m
}

func get(t *testing.T, m *OrderedMap, key string) interface{} {
	t.Helper()
	v, _ := m.Get(key)
	return v
}

func skipDirective(ifVar string) *ast.Directive {
	return &ast.Directive{Name: name("skip"), Arguments: []*ast.Argument{
		{Name: name("if"), Value: &ast.Variable{Name: name(ifVar)}},
	}}
}

// --- a small inline "library" schema, grounded on the teacher's struct-literal schema style. ---

func libraryTestSchema(t *testing.T) (*schema.Schema, map[string]interface{}) {
	authorType := &schema.ObjectType{
		Name: "Author",
		Fields: map[string]*schema.FieldDefinition{
			"name": {
				Type: schema.NewNonNullType(schema.StringType),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return fc.Object.(map[string]interface{})["name"], nil
				},
			},
		},
	}

	bookType := &schema.ObjectType{
		Name: "Book",
		Fields: map[string]*schema.FieldDefinition{
			"title": {
				Type: schema.NewNonNullType(schema.StringType),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return fc.Object.(map[string]interface{})["title"], nil
				},
			},
			"author": {
				Type: authorType,
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return fc.Object.(map[string]interface{})["author"], nil
				},
			},
			"brokenTitle": {
				Type: schema.NewNonNullType(schema.StringType),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return nil, errors.New("boom")
				},
			},
		},
		IsTypeOf: func(v interface{}) bool {
			m, ok := v.(map[string]interface{})
			return ok && m["__kind"] == "Book"
		},
	}

	videoType := &schema.ObjectType{
		Name: "Video",
		Fields: map[string]*schema.FieldDefinition{
			"lengthMinutes": {
				Type: schema.NewNonNullType(schema.IntType),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return fc.Object.(map[string]interface{})["lengthMinutes"], nil
				},
			},
		},
		IsTypeOf: func(v interface{}) bool {
			m, ok := v.(map[string]interface{})
			return ok && m["__kind"] == "Video"
		},
	}

	searchResultUnion := &schema.UnionType{
		Name:        "SearchResult",
		MemberTypes: []*schema.ObjectType{bookType, videoType},
	}

	books := []interface{}{
		map[string]interface{}{"__kind": "Book", "id": "1", "title": "The Left Hand of Darkness", "author": map[string]interface{}{"name": "Ursula K. Le Guin"}},
		map[string]interface{}{"__kind": "Book", "id": "2", "title": "A Fire Upon the Deep", "author": nil},
	}

	queryType := &schema.ObjectType{
		Name: "Query",
		Fields: map[string]*schema.FieldDefinition{
			"books": {
				Type: schema.NewNonNullType(schema.NewListType(schema.NewNonNullType(bookType))),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return books, nil
				},
			},
			"book": {
				Type: bookType,
				Arguments: map[string]*schema.InputValueDefinition{
					"id": {Type: schema.NewNonNullType(schema.IDType)},
				},
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					id := fc.Arguments["id"]
					for _, b := range books {
						if b.(map[string]interface{})["id"] == id {
							return b, nil
						}
					}
					return nil, nil
				},
			},
			"search": {
				Type: schema.NewNonNullType(schema.NewListType(schema.NewNonNullType(searchResultUnion))),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return []interface{}{
						books[0],
						map[string]interface{}{"__kind": "Video", "lengthMinutes": 42},
					}, nil
				},
			},
			"failing": {
				Type: schema.NewNonNullType(schema.StringType),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return nil, errors.New("boom")
				},
			},
			"nullableFailing": {
				Type: schema.StringType,
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					return nil, errors.New("boom")
				},
			},
		},
	}

	var callOrder []string

	mutationType := &schema.ObjectType{
		Name: "Mutation",
		Fields: map[string]*schema.FieldDefinition{
			"first": {
				Type: schema.NewNonNullType(schema.StringType),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					callOrder = append(callOrder, "first")
					return "ok", nil
				},
			},
			"second": {
				Type: schema.NewNonNullType(schema.StringType),
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					callOrder = append(callOrder, "second")
					return "ok", nil
				},
			},
		},
	}

	subscriptionType := &schema.ObjectType{
		Name: "Subscription",
		Fields: map[string]*schema.FieldDefinition{
			"bookAdded": {
				Type: bookType,
				Resolve: func(fc schema.FieldContext) (interface{}, error) {
					if fc.IsSubscribe {
						ch := make(chan interface{}, len(books))
						for _, b := range books {
							ch <- b
						}
						close(ch)
						return (<-chan interface{})(ch), nil
					}
					return fc.Object, nil
				},
			},
		},
	}

	s, err := schema.New(&schema.SchemaDefinition{
		Query:           queryType,
		Mutation:        mutationType,
		Subscription:    subscriptionType,
		AdditionalTypes: []schema.NamedType{authorType, videoType, searchResultUnion},
	})
	require.NoError(t, err)

	return s, map[string]interface{}{"callOrder": &callOrder}
}

func TestCompileAndExecute_BasicQuery(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", nil, sel(
		field("books", nil, nil, sel(
			field("title", nil, nil, nil),
			field("author", nil, nil, sel(
				field("name", nil, nil, nil),
			)),
		)),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)
	require.NotNil(t, q)

	result := q.Execute(context.Background(), nil, nil)
	require.Empty(t, result.Errors)

	data := asMap(t, result.Data)
	booksOut, ok := get(t, data, "books").([]interface{})
	require.True(t, ok)
	require.Len(t, booksOut, 2)

	first := asMap(t, booksOut[0])
	assert.Equal(t, "The Left Hand of Darkness", get(t, first, "title"))
	author := asMap(t, get(t, first, "author"))
	assert.Equal(t, "Ursula K. Le Guin", get(t, author, "name"))

	second := asMap(t, booksOut[1])
	assert.Nil(t, get(t, second, "author"))
}

func TestCompileAndExecute_SkipDirective(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", []*ast.VariableDefinition{
		{Variable: &ast.Variable{Name: name("omit")}, Type: &ast.NonNullType{Type: &ast.NamedType{Name: name("Boolean")}}},
	}, sel(
		field("books", nil, nil, sel(
			field("title", nil, []*ast.Directive{skipDirective("omit")}, nil),
		)),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, map[string]interface{}{"omit": true})
	require.Empty(t, result.Errors)
	data := asMap(t, result.Data)
	books := get(t, data, "books").([]interface{})
	first := asMap(t, books[0])
	_, present := first.Get("title")
	assert.False(t, present)
}

func TestCompileAndExecute_ArgumentVariable(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", []*ast.VariableDefinition{
		{Variable: &ast.Variable{Name: name("id")}, Type: &ast.NonNullType{Type: &ast.NamedType{Name: name("ID")}}},
	}, sel(
		field("book", []*ast.Argument{
			{Name: name("id"), Value: &ast.Variable{Name: name("id")}},
		}, nil, sel(field("title", nil, nil, nil))),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, map[string]interface{}{"id": "2"})
	require.Empty(t, result.Errors)
	data := asMap(t, result.Data)
	book := asMap(t, get(t, data, "book"))
	assert.Equal(t, "A Fire Upon the Deep", get(t, book, "title"))
}

func TestCompileAndExecute_MissingRequiredVariable(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", []*ast.VariableDefinition{
		{Variable: &ast.Variable{Name: name("id")}, Type: &ast.NonNullType{Type: &ast.NamedType{Name: name("ID")}}},
	}, sel(
		field("book", []*ast.Argument{
			{Name: name("id"), Value: &ast.Variable{Name: name("id")}},
		}, nil, sel(field("title", nil, nil, nil))),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, nil)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, KindVariableCoercion, result.Errors[0].Kind)
}

func TestCompileAndExecute_NonNullBubblesToNullableAncestor(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", nil, sel(
		field("book", []*ast.Argument{
			{Name: name("id"), Value: &ast.StringValue{Value: "1"}},
		}, nil, sel(
			field("title", nil, nil, nil),
			field("brokenTitle", nil, nil, nil),
		)),
		field("books", nil, nil, sel(field("title", nil, nil, nil))),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindResolverFailure, result.Errors[0].Kind)

	data := asMap(t, result.Data)
	// book is nullable, so the non-null violation on its brokenTitle field cuts there
	// rather than propagating past it.
	assert.Nil(t, get(t, data, "book"))
	// a sibling root field untouched by the error is unaffected.
	assert.NotEmpty(t, get(t, data, "books"))
}

func TestCompileAndExecute_NonNullTopLevelFieldNullsEntireResponse(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", nil, sel(
		field("books", nil, nil, sel(field("title", nil, nil, nil))),
		field("failing", nil, nil, nil),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, nil)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, KindResolverFailure, result.Errors[0].Kind)
	// failing has no nullable ancestor (it's a non-null root field), so the whole response nulls.
	assert.Nil(t, result.Data)
}

func TestCompileAndExecute_NullableFieldAbsorbsError(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", nil, sel(
		field("nullableFailing", nil, nil, nil),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, nil)
	require.Len(t, result.Errors, 1)
	data := asMap(t, result.Data)
	assert.Nil(t, get(t, data, "nullableFailing"))
}

func TestCompileAndExecute_AbstractTypeResolution(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", nil, sel(
		field("search", nil, nil, sel(
			aliasedField("kind", "__typename", nil),
			&ast.InlineFragment{
				TypeCondition: &ast.NamedType{Name: name("Book")},
				SelectionSet:  sel(field("title", nil, nil, nil)),
			},
			&ast.InlineFragment{
				TypeCondition: &ast.NamedType{Name: name("Video")},
				SelectionSet:  sel(field("lengthMinutes", nil, nil, nil)),
			},
		)),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, nil)
	require.Empty(t, result.Errors)

	data := asMap(t, result.Data)
	results := get(t, data, "search").([]interface{})
	require.Len(t, results, 2)

	book := asMap(t, results[0])
	assert.Equal(t, "Book", get(t, book, "kind"))
	assert.Equal(t, "The Left Hand of Darkness", get(t, book, "title"))

	video := asMap(t, results[1])
	assert.Equal(t, "Video", get(t, video, "kind"))
	assert.Equal(t, 42, get(t, video, "lengthMinutes"))
}

func TestCompileAndExecute_MutationFieldsRunInDocumentOrder(t *testing.T) {
	s, order := libraryTestSchema(t)

	document := doc(op("mutation", nil, sel(
		field("second", nil, nil, nil),
		field("first", nil, nil, nil),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)
	assert.True(t, q.IsMutation())

	result := q.Execute(context.Background(), nil, nil)
	require.Empty(t, result.Errors)

	calls := *(order["callOrder"].(*[]string))
	assert.Equal(t, []string{"second", "first"}, calls)
}

func TestSubscribe_StreamsOneResultPerEvent(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("subscription", nil, sel(
		field("bookAdded", nil, nil, sel(field("title", nil, nil, nil))),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	var titles []string
	for result := range q.Subscribe(context.Background(), nil, nil) {
		require.Empty(t, result.Errors)
		data := asMap(t, result.Data)
		book := asMap(t, get(t, data, "bookAdded"))
		titles = append(titles, get(t, book, "title").(string))
	}

	assert.Equal(t, []string{"The Left Hand of Darkness", "A Fire Upon the Deep"}, titles)
}

func TestCompileAndExecute_ResponseKeyOrderMatchesDocumentOrder(t *testing.T) {
	s, _ := libraryTestSchema(t)

	// { book(id: "1") { title ...Extra } } with Extra selecting author { name }: the fragment's
	// field must land after title, in the order the document names them, not however collection
	// happens to visit fragments.
	document := &ast.Document{
		Definitions: []ast.Definition{
			&ast.OperationDefinition{
				SelectionSet: sel(
					field("book", []*ast.Argument{
						{Name: name("id"), Value: &ast.StringValue{Value: "1"}},
					}, nil, sel(
						field("title", nil, nil, nil),
						&ast.FragmentSpread{FragmentName: name("Extra")},
					)),
				),
			},
			&ast.FragmentDefinition{
				Name:          name("Extra"),
				TypeCondition: &ast.NamedType{Name: name("Book")},
				SelectionSet: sel(
					field("author", nil, nil, sel(field("name", nil, nil, nil))),
				),
			},
		},
	}

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, nil)
	require.Empty(t, result.Errors)

	data := asMap(t, result.Data)
	book := asMap(t, get(t, data, "book"))
	assert.Equal(t, []string{"title", "author"}, book.Keys())
}

func TestCompileAndExecute_SkipDirectiveRejectsNonBooleanVariable(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", []*ast.VariableDefinition{
		{Variable: &ast.Variable{Name: name("omit")}, Type: &ast.NamedType{Name: name("String")}},
	}, sel(
		field("books", nil, nil, sel(
			field("title", nil, []*ast.Directive{skipDirective("omit")}, nil),
		)),
	)))

	_, errs := Compile(s, document, "", nil)
	require.NotEmpty(t, errs)
	assert.Equal(t, KindCompilation, errs[0].Kind)
}

func TestCompileAndExecute_SkipDirectiveAllowsNullableBooleanWithDefault(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", []*ast.VariableDefinition{
		{
			Variable:     &ast.Variable{Name: name("omit")},
			Type:         &ast.NamedType{Name: name("Boolean")},
			DefaultValue: &ast.BooleanValue{Value: false},
		},
	}, sel(
		field("books", nil, nil, sel(
			field("title", nil, []*ast.Directive{skipDirective("omit")}, nil),
		)),
	)))

	q, errs := Compile(s, document, "", nil)
	require.Empty(t, errs)

	result := q.Execute(context.Background(), nil, nil)
	require.Empty(t, result.Errors)
	data := asMap(t, result.Data)
	books := get(t, data, "books").([]interface{})
	first := asMap(t, books[0])
	assert.Equal(t, "The Left Hand of Darkness", get(t, first, "title"))
}

func TestCompileAndExecute_UnknownField(t *testing.T) {
	s, _ := libraryTestSchema(t)

	document := doc(op("query", nil, sel(
		field("doesNotExist", nil, nil, nil),
	)))

	_, errs := Compile(s, document, "", nil)
	require.NotEmpty(t, errs)
	assert.Equal(t, KindCompilation, errs[0].Kind)
}
