// Package client dials a Peer and exposes the three RPCs the core
// issues against it: requesting a proposal, pushing a transaction batch,
// and sending a vote-bundle State. Dialing is a plain insecure client
// connection; TLS credential management is a deployment concern, not
// owned here.
package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/luxfi/ordergate/peer"
	"github.com/luxfi/ordergate/round"
	"github.com/luxfi/ordergate/wire"
)

const (
	methodRequestProposal = "/ordergate.OrderingService/RequestProposal"
	methodPushBatch       = "/ordergate.OrderingService/PushBatch"
	methodSendState       = "/ordergate.Yac/SendState"
)

// Client is the set of RPCs the core can issue against a single peer.
type Client interface {
	RequestProposal(ctx context.Context, round round.Round) (wire.Proposal, error)
	PushBatch(ctx context.Context, batch wire.Batch) error
	SendState(ctx context.Context, state wire.State) error
	Close() error
}

// Factory creates a Client for a Peer (GenericClientFactory); construction
// failure (channel creation failed) is a NetworkTransient error the
// caller treats as "this role's binding is unavailable for this round".
type Factory interface {
	CreateClient(p peer.Peer) (Client, error)
}

// ChannelParams is passed opaquely to the underlying gRPC dial — the
// grpc_channel_params configuration knob.
type ChannelParams struct {
	DialOptions []grpc.DialOption
}

// GRPCFactory dials peers over gRPC using the ordergate-json codec.
type GRPCFactory struct {
	Params ChannelParams
}

// NewGRPCFactory returns a Factory that dials peers with params.
func NewGRPCFactory(params ChannelParams) *GRPCFactory {
	return &GRPCFactory{Params: params}
}

// CreateClient dials p.Address and returns a Client, or a NetworkTransient
// error if the channel cannot be constructed.
func (f *GRPCFactory) CreateClient(p peer.Peer) (Client, error) {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecSubtype)),
	}, f.Params.DialOptions...)

	conn, err := grpc.NewClient(p.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", p.Address, err)
	}
	return &grpcClient{conn: conn}, nil
}

type grpcClient struct {
	conn *grpc.ClientConn
}

func (c *grpcClient) RequestProposal(ctx context.Context, r round.Round) (wire.Proposal, error) {
	req := wire.ProposalRequest{Round: r}
	var resp wire.Proposal
	if err := c.conn.Invoke(ctx, methodRequestProposal, &req, &resp); err != nil {
		return wire.Proposal{}, fmt.Errorf("client: request proposal: %w", err)
	}
	return resp, nil
}

func (c *grpcClient) PushBatch(ctx context.Context, batch wire.Batch) error {
	req := wire.BatchPush{Batches: []wire.Batch{batch}}
	var resp struct{}
	if err := c.conn.Invoke(ctx, methodPushBatch, &req, &resp); err != nil {
		return fmt.Errorf("client: push batch: %w", err)
	}
	return nil
}

func (c *grpcClient) SendState(ctx context.Context, state wire.State) error {
	var resp struct{}
	if err := c.conn.Invoke(ctx, methodSendState, &state, &resp); err != nil {
		return fmt.Errorf("client: send state: %w", err)
	}
	return nil
}

func (c *grpcClient) Close() error {
	return c.conn.Close()
}
