package handler

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"course-api/pkg/cache"
)

func TestInvalidationHandlerDropsDeclaredKeys(t *testing.T) {
	listCache := &memCache{data: map[string][]byte{
		cache.CoursesKey:           []byte(`[]`),
		cache.LessonsKey("abc"):    []byte(`[]`),
		cache.LessonsKey("others"): []byte(`[]`),
	}}

	body := []byte(`{"keys":["catalog:courses","catalog:lessons:abc"]}`)
	err := InvalidationHandler(context.Background(), amqp.Delivery{Body: body}, InvalidationDeps{Cache: listCache})
	if err != nil {
		t.Fatalf("InvalidationHandler: %v", err)
	}

	if _, ok := listCache.data[cache.CoursesKey]; ok {
		t.Fatal("course list key still cached after invalidation")
	}
	if _, ok := listCache.data[cache.LessonsKey("abc")]; ok {
		t.Fatal("lesson list key still cached after invalidation")
	}
	if _, ok := listCache.data[cache.LessonsKey("others")]; !ok {
		t.Fatal("undeclared key was dropped")
	}
}

func TestInvalidationHandlerRejectsMalformedBody(t *testing.T) {
	listCache := &memCache{data: map[string][]byte{}}

	err := InvalidationHandler(context.Background(), amqp.Delivery{Body: []byte("not json")}, InvalidationDeps{Cache: listCache})
	if err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
}
