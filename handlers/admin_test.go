package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/herbtrade/herbtrade-backend-go/database"
)

func assignRequest(orderID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(orderID.Hex())
	return c, rec
}

func pendingOrderDoc(orderID primitive.ObjectID) bson.D {
	return bson.D{
		{Key: "_id", Value: orderID},
		{Key: "user", Value: primitive.NewObjectID()},
		{Key: "status", Value: "pending"},
		{Key: "deliveryStatus", Value: "unassigned"},
		{Key: "deliveryLocation", Value: bson.D{
			{Key: "type", Value: "Point"},
			{Key: "coordinates", Value: bson.A{76.90, 8.80}},
		}},
	}
}

func agentDoc(agentID primitive.ObjectID, name string, lon, lat float64) bson.D {
	return bson.D{
		{Key: "_id", Value: agentID},
		{Key: "name", Value: name},
		{Key: "role", Value: "delivery"},
		{Key: "isActive", Value: true},
		{Key: "isAvailable", Value: true},
		{Key: "maxDeliveryRadius", Value: 10.0},
		{Key: "currentLocation", Value: bson.D{
			{Key: "type", Value: "Point"},
			{Key: "coordinates", Value: bson.A{lon, lat}},
		}},
	}
}

func TestAutoAssignDelivery(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock).DatabaseName("herbtrade"))

	mt.Run("already assigned order is rejected without a write", func(mt *mtest.T) {
		database.DB = mt.DB

		orderID := primitive.NewObjectID()
		assignee := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "herbtrade.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: orderID},
			{Key: "user", Value: primitive.NewObjectID()},
			{Key: "status", Value: "confirmed"},
			{Key: "deliveryStatus", Value: "assigned"},
			{Key: "deliveryAssignee", Value: assignee},
		}))

		c, rec := assignRequest(orderID)
		require.NoError(mt, AutoAssignDelivery(c))
		require.Equal(mt, http.StatusBadRequest, rec.Code)
		require.Contains(mt, rec.Body.String(), "already assigned")

		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			require.NotEqual(mt, "update", evt.CommandName)
		}
	})

	mt.Run("no agent in range leaves the order unassigned", func(mt *mtest.T) {
		database.DB = mt.DB

		orderID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "herbtrade.orders", mtest.FirstBatch, pendingOrderDoc(orderID)),
			// ~100 km away against a 10 km radius
			mtest.CreateCursorResponse(0, "herbtrade.sellers", mtest.FirstBatch,
				agentDoc(primitive.NewObjectID(), "Far Agent", 77.50, 9.50)),
		)

		c, rec := assignRequest(orderID)
		require.NoError(mt, AutoAssignDelivery(c))
		require.Equal(mt, http.StatusNotFound, rec.Code)
		require.Contains(mt, rec.Body.String(), "No available delivery agent in range")

		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			require.NotEqual(mt, "update", evt.CommandName)
		}
	})

	mt.Run("in-range agent is assigned in a single write", func(mt *mtest.T) {
		database.DB = mt.DB

		orderID := primitive.NewObjectID()
		agentID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "herbtrade.orders", mtest.FirstBatch, pendingOrderDoc(orderID)),
			mtest.CreateCursorResponse(0, "herbtrade.sellers", mtest.FirstBatch,
				agentDoc(agentID, "Near Agent", 76.95, 8.84)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		c, rec := assignRequest(orderID)
		require.NoError(mt, AutoAssignDelivery(c))
		require.Equal(mt, http.StatusOK, rec.Code)
		require.Contains(mt, rec.Body.String(), "Delivery assigned")

		var updateCmd bson.Raw
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			if evt.CommandName == "update" {
				updateCmd = evt.Command
			}
		}
		require.NotNil(mt, updateCmd)

		stmt := updateCmd.Lookup("updates").Array().Index(0).Value().Document()
		require.Equal(mt, bson.TypeNull, stmt.Lookup("q", "deliveryAssignee").Type)

		// Assignee, delivery status, event and the pending -> confirmed
		// flip all ride one pipeline stage.
		set := stmt.Lookup("u").Array().Index(0).Value().Document().Lookup("$set").Document()
		require.Equal(mt, agentID, set.Lookup("deliveryAssignee").ObjectID())
		require.Equal(mt, "assigned", set.Lookup("deliveryStatus").StringValue())

		cond := set.Lookup("status").Document().Lookup("$cond").Array()
		require.Equal(mt, "confirmed", cond.Index(1).Value().StringValue())
		require.Equal(mt, "$status", cond.Index(2).Value().StringValue())

		_, appended := set.Lookup("deliveryEvents").Document().Lookup("$concatArrays").ArrayOK()
		require.True(mt, appended)
	})
}
