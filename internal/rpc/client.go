package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/clickforge/clicker-core/internal/game"
)

// Client is a typed wrapper over a connection to a clicker service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) call(ctx context.Context, method string, in map[string]any, out any) error {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return err
	}
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return err
	}
	return fromStruct(resp, out)
}

func (c *Client) State(ctx context.Context) (game.View, error) {
	var v game.View
	err := c.call(ctx, methodGetState, nil, &v)
	return v, err
}

func (c *Client) Click(ctx context.Context) (game.ClickResult, error) {
	var r game.ClickResult
	err := c.call(ctx, methodClick, nil, &r)
	return r, err
}

// Purchase buys qty units of id; a negative qty buys max.
func (c *Client) Purchase(ctx context.Context, id string, qty int) (game.PurchaseView, error) {
	var r game.PurchaseView
	err := c.call(ctx, methodPurchase, map[string]any{"id": id, "quantity": qty}, &r)
	return r, err
}

func (c *Client) Tick(ctx context.Context) (game.TickReport, error) {
	var r game.TickReport
	err := c.call(ctx, methodTick, nil, &r)
	return r, err
}

func (c *Client) Reset(ctx context.Context) (game.View, error) {
	var v game.View
	err := c.call(ctx, methodReset, nil, &v)
	return v, err
}

func (c *Client) SetCapacityLimit(ctx context.Context, on bool) (game.View, error) {
	var v game.View
	err := c.call(ctx, methodSetCapacity, map[string]any{"enabled": on}, &v)
	return v, err
}
