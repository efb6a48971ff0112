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
	"github.com/herbtrade/herbtrade-backend-go/middleware"
)

func cancelRequest(orderID, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(orderID.Hex())
	c.Set(middleware.CtxPrincipalID, userID)
	return c, rec
}

func TestCancelOrder(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock).DatabaseName("herbtrade"))

	mt.Run("cancelled line items are returned to stock", func(mt *mtest.T) {
		database.DB = mt.DB

		orderID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		productID := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "herbtrade.orders", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: orderID},
				{Key: "user", Value: userID},
				{Key: "status", Value: "pending"},
				{Key: "deliveryStatus", Value: "unassigned"},
				{Key: "items", Value: bson.A{bson.D{
					{Key: "product", Value: productID},
					{Key: "quantity", Value: 3},
					{Key: "price", Value: 120.0},
				}}},
			}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
		)

		c, rec := cancelRequest(orderID, userID)
		require.NoError(mt, CancelOrder(c))
		require.Equal(mt, http.StatusOK, rec.Code)
		require.Contains(mt, rec.Body.String(), `"cancelled"`)

		var stockCmd bson.Raw
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			if evt.CommandName == "update" && evt.Command.Lookup("update").StringValue() == database.ColProducts {
				stockCmd = evt.Command
			}
		}
		require.NotNil(mt, stockCmd)

		stmt := stockCmd.Lookup("updates").Array().Index(0).Value().Document()
		require.Equal(mt, productID, stmt.Lookup("q", "_id").ObjectID())
		require.Equal(mt, int64(3), stmt.Lookup("u", "$inc", "inStock").AsInt64())
	})

	mt.Run("shipped order cannot be cancelled", func(mt *mtest.T) {
		database.DB = mt.DB

		orderID := primitive.NewObjectID()
		userID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "herbtrade.orders", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: orderID},
			{Key: "user", Value: userID},
			{Key: "status", Value: "shipped"},
			{Key: "deliveryStatus", Value: "out_for_delivery"},
		}))

		c, rec := cancelRequest(orderID, userID)
		require.NoError(mt, CancelOrder(c))
		require.Equal(mt, http.StatusBadRequest, rec.Code)

		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			require.NotEqual(mt, "update", evt.CommandName)
		}
	})
}
