/*******************************************************************************
* Copyright (C) 2026 the ArchiveGraph Authors
*
* Permission is hereby granted, free of charge, to any person obtaining
* a copy of this software and associated documentation files (the
* "Software"), to deal in the Software without restriction, including
* without limitation the rights to use, copy, modify, merge, publish,
* distribute, sublicense, and/or sell copies of the Software, and to
* permit persons to whom the Software is furnished to do so, subject to
* the following conditions:
*
* The above copyright notice and this permission notice shall be
* included in all copies or substantial portions of the Software.
*
* THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
* EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
* MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
* NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE
* LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION
* OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION
* WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
*
* SPDX-License-Identifier: MIT
******************************************************************************/

// Package graph_mongodb implements the graph substrate on MongoDB: a
// vertices and an edges collection, a unique (label, from, to) index for
// grant-edge conflict detection, and client-session transactions for the
// mutation boundary. Transactions require a replica-set deployment.
package graph_mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/archivegraph/archivegraph-go-components/internal/common"
	"github.com/archivegraph/archivegraph-go-components/internal/graph"
)

// ErrEdgeAlreadyExists is returned when adding a duplicate (label, from, to)
// edge.
var ErrEdgeAlreadyExists = errors.New("edge already exists")

type vertexDoc struct {
	ID    string            `bson:"_id"`
	Type  string            `bson:"vertexType"`
	Props map[string]string `bson:"props"`
}

type edgeDoc struct {
	ID    string `bson:"_id"`
	Label string `bson:"label"`
	From  string `bson:"from"`
	To    string `bson:"to"`
	Seq   int64  `bson:"seq"`
}

// MongoDBGraphDatabase is the graph substrate backed by MongoDB.
type MongoDBGraphDatabase struct {
	client   *mongo.Client
	vertices *mongo.Collection
	edges    *mongo.Collection
	counters *mongo.Collection
}

// NewMongoDBGraphDatabase connects to MongoDB and ensures the collection
// indexes.
func NewMongoDBGraphDatabase(ctx context.Context, uri, database string) (*MongoDBGraphDatabase, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(database)
	s := &MongoDBGraphDatabase{
		client:   client,
		vertices: db.Collection("vertices"),
		edges:    db.Collection("edges"),
		counters: db.Collection("counters"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoDBGraphDatabase) ensureIndexes(ctx context.Context) error {
	_, err := s.vertices.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "vertexType", Value: 1}},
	})
	if err != nil {
		return err
	}
	_, err = s.edges.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "label", Value: 1}, {Key: "from", Value: 1}, {Key: "to", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "from", Value: 1}, {Key: "label", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}, {Key: "label", Value: 1}}},
	})
	return err
}

// Close disconnects the client.
func (s *MongoDBGraphDatabase) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoDBGraphDatabase) Vertex(ctx context.Context, id string) (*graph.Vertex, error) {
	return s.findVertex(ctx, id)
}

func (s *MongoDBGraphDatabase) VerticesByProperty(ctx context.Context, key, value, vertexType string) ([]*graph.Vertex, error) {
	filter := bson.M{"props." + key: value}
	if vertexType != "" {
		filter["vertexType"] = vertexType
	}
	cursor, err := s.vertices.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []vertexDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*graph.Vertex, 0, len(docs))
	for _, d := range docs {
		out = append(out, vertexFromDoc(d))
	}
	return out, nil
}

func (s *MongoDBGraphDatabase) Edges(ctx context.Context, vertexID string, dir graph.Direction, label graph.Label) ([]*graph.Edge, error) {
	endpoint := "from"
	if dir == graph.In {
		endpoint = "to"
	}
	filter := bson.M{endpoint: vertexID}
	if label != "" {
		filter["label"] = string(label)
	}
	cursor, err := s.edges.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []edgeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*graph.Edge, 0, len(docs))
	for _, d := range docs {
		out = append(out, &graph.Edge{ID: d.ID, Label: graph.Label(d.Label), From: d.From, To: d.To})
	}
	return out, nil
}

// Update runs fn inside one client-session transaction.
func (s *MongoDBGraphDatabase) Update(ctx context.Context, fn func(tx graph.Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(&mongoTx{store: s, ctx: sc})
	})
	return err
}

// mongoTx routes the substrate's Tx contract through a session context so
// every operation joins the surrounding transaction.
type mongoTx struct {
	store *MongoDBGraphDatabase
	ctx   mongo.SessionContext
}

func (t *mongoTx) Vertex(_ context.Context, id string) (*graph.Vertex, error) {
	return t.store.findVertex(t.ctx, id)
}

func (t *mongoTx) VerticesByProperty(_ context.Context, key, value, vertexType string) ([]*graph.Vertex, error) {
	return t.store.VerticesByProperty(t.ctx, key, value, vertexType)
}

func (t *mongoTx) Edges(_ context.Context, vertexID string, dir graph.Direction, label graph.Label) ([]*graph.Edge, error) {
	return t.store.Edges(t.ctx, vertexID, dir, label)
}

func (t *mongoTx) AddVertex(v *graph.Vertex) error {
	doc := vertexDoc{ID: v.ID, Type: v.Type, Props: v.Props}
	if doc.Props == nil {
		doc.Props = map[string]string{}
	}
	if _, err := t.store.vertices.InsertOne(t.ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("vertex '%s' already exists", v.ID)
		}
		return err
	}
	return nil
}

func (t *mongoTx) SetProperty(id, key, value string) error {
	res, err := t.store.vertices.UpdateByID(t.ctx, id, bson.M{"$set": bson.M{"props." + key: value}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return common.NewErrNotFound(id)
	}
	return nil
}

func (t *mongoTx) RemoveVertex(id string) error {
	res, err := t.store.vertices.DeleteOne(t.ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return common.NewErrNotFound(id)
	}
	_, err = t.store.edges.DeleteMany(t.ctx, bson.M{"$or": bson.A{
		bson.M{"from": id},
		bson.M{"to": id},
	}})
	return err
}

func (t *mongoTx) AddEdge(label graph.Label, from, to string) (*graph.Edge, error) {
	for _, id := range []string{from, to} {
		if _, err := t.store.findVertex(t.ctx, id); err != nil {
			return nil, err
		}
	}
	seq, err := t.store.nextSeq(t.ctx)
	if err != nil {
		return nil, err
	}
	edge := &graph.Edge{ID: uuid.NewString(), Label: label, From: from, To: to}
	doc := edgeDoc{ID: edge.ID, Label: string(label), From: from, To: to, Seq: seq}
	if _, err := t.store.edges.InsertOne(t.ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEdgeAlreadyExists
		}
		return nil, err
	}
	return edge, nil
}

func (t *mongoTx) RemoveEdge(label graph.Label, from, to string) error {
	_, err := t.store.edges.DeleteOne(t.ctx, bson.M{
		"label": string(label), "from": from, "to": to,
	})
	return err
}

func (s *MongoDBGraphDatabase) findVertex(ctx context.Context, id string) (*graph.Vertex, error) {
	var doc vertexDoc
	err := s.vertices.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.NewErrNotFound(id)
		}
		return nil, err
	}
	return vertexFromDoc(doc), nil
}

// nextSeq hands out a monotonic edge sequence number, keeping edge
// iteration order deterministic across the cluster.
func (s *MongoDBGraphDatabase) nextSeq(ctx context.Context) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "edgeSeq"},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}

func vertexFromDoc(d vertexDoc) *graph.Vertex {
	props := d.Props
	if props == nil {
		props = map[string]string{}
	}
	return &graph.Vertex{ID: d.ID, Type: d.Type, Props: props}
}
