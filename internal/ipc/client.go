package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Sheets lists the sheet directory of a workbook.
func (c *Client) Sheets(path string) (*SheetsResponse, error) {
	var resp SheetsResponse
	if err := c.client.Call(ServiceName+".Sheets", SheetsRequest{Path: path}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SheetData fetches one sheet as a JSON array of row objects.
func (c *Client) SheetData(path, sheet string) (*SheetDataResponse, error) {
	var resp SheetDataResponse
	if err := c.client.Call(ServiceName+".SheetData", SheetDataRequest{Path: path, Sheet: sheet}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Read renders one sheet, or all sheets when sheet is empty, as text.
func (c *Client) Read(path, sheet string) (*ReadResponse, error) {
	var resp ReadResponse
	if err := c.client.Call(ServiceName+".Read", ReadRequest{Path: path, Sheet: sheet}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Query filters a sheet's rows with a predicate expression.
func (c *Client) Query(path, sheet, query string) (*QueryResponse, error) {
	var resp QueryResponse
	if err := c.client.Call(ServiceName+".Query", QueryRequest{Path: path, Sheet: sheet, Query: query}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateCell sets one cell value.
func (c *Client) UpdateCell(path, sheet string, row int, column, value string) (*UpdateCellResponse, error) {
	var resp UpdateCellResponse
	req := UpdateCellRequest{Path: path, Sheet: sheet, Row: row, Column: column, Value: value}
	if err := c.client.Call(ServiceName+".UpdateCell", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddRow appends one row of values.
func (c *Client) AddRow(path, sheet string, values []string) (*AddRowResponse, error) {
	var resp AddRowResponse
	req := AddRowRequest{Path: path, Sheet: sheet, Values: values}
	if err := c.client.Call(ServiceName+".AddRow", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateSheet creates a new sheet with header columns.
func (c *Client) CreateSheet(path, sheet string, headers []string) (*CreateSheetResponse, error) {
	var resp CreateSheetResponse
	req := CreateSheetRequest{Path: path, Sheet: sheet, Headers: headers}
	if err := c.client.Call(ServiceName+".CreateSheet", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves daemon runtime information.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call(ServiceName+".Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists recorded mutations, newest first.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call(ServiceName+".History", HistoryRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryClear removes all history records.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	var resp HistoryClearResponse
	if err := c.client.Call(ServiceName+".HistoryClear", HistoryClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
