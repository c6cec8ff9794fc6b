package api

// openAPISpec is served at /swagger.json.
const openAPISpec = `{
  "openapi": "3.0.0",
  "info": {
    "title": "Storefront API",
    "version": "1.0.0"
  },
  "components": {
    "securitySchemes": {
      "bearer": {"type": "http", "scheme": "bearer", "bearerFormat": "JWT"}
    },
    "schemas": {
      "Message": {
        "type": "object",
        "properties": {"message": {"type": "string"}}
      },
      "User": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "name": {"type": "string"},
          "email": {"type": "string"}
        }
      },
      "AuthResponse": {
        "type": "object",
        "properties": {
          "token": {"type": "string"},
          "user": {"$ref": "#/components/schemas/User"}
        }
      },
      "Product": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "sku": {"type": "string"},
          "name": {"type": "string"},
          "description": {"type": "string"},
          "category": {"type": "string"},
          "price": {"type": "number"},
          "image_url": {"type": "string"},
          "created_at": {"type": "string", "format": "date-time"}
        }
      },
      "OrderRequest": {
        "type": "object",
        "required": ["quantity", "address", "phone"],
        "properties": {
          "product_id": {"type": "integer"},
          "product_name": {"type": "string"},
          "quantity": {"type": "integer", "minimum": 1},
          "address": {"type": "string"},
          "phone": {"type": "string"},
          "payment_type": {"type": "string"}
        }
      },
      "OrderCreated": {
        "type": "object",
        "properties": {
          "orderId": {"type": "integer"},
          "message": {"type": "string"}
        }
      },
      "MyOrder": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "product_id": {"type": "integer"},
          "product_name": {"type": "string", "nullable": true},
          "price": {"type": "number", "nullable": true},
          "quantity": {"type": "integer"},
          "address": {"type": "string"},
          "phone": {"type": "string"},
          "payment_type": {"type": "string"},
          "status": {"type": "string", "enum": ["PENDING", "CONFIRMED", "REJECTED"]},
          "created_at": {"type": "string", "format": "date-time"}
        }
      }
    }
  },
  "paths": {
    "/health": {
      "get": {"summary": "Health check", "responses": {"200": {"description": "Service is healthy"}}}
    },
    "/api/register": {
      "post": {
        "summary": "Create an account",
        "requestBody": {"content": {"application/json": {"schema": {
          "type": "object",
          "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string", "minLength": 6}}
        }}}},
        "responses": {
          "200": {"description": "Registered", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AuthResponse"}}}},
          "400": {"description": "Missing fields or email taken", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Message"}}}}
        }
      }
    },
    "/api/login": {
      "post": {
        "summary": "Sign in",
        "requestBody": {"content": {"application/json": {"schema": {
          "type": "object",
          "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        }}}},
        "responses": {
          "200": {"description": "Signed in", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AuthResponse"}}}},
          "400": {"description": "Unknown user or wrong password", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Message"}}}}
        }
      }
    },
    "/api/products": {
      "get": {
        "summary": "List products, newest first",
        "responses": {"200": {"description": "Products", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/Product"}}}}}}
      }
    },
    "/api/products/{id}": {
      "get": {
        "summary": "Get a product",
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}],
        "responses": {
          "200": {"description": "Product", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Product"}}}},
          "404": {"description": "Not found"}
        }
      }
    },
    "/api/orders": {
      "post": {
        "summary": "Place an order by product id or product name",
        "security": [{"bearer": []}],
        "requestBody": {"content": {"application/json": {"schema": {"$ref": "#/components/schemas/OrderRequest"}}}},
        "responses": {
          "200": {"description": "Created", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/OrderCreated"}}}},
          "400": {"description": "Bad order data or product not found"},
          "401": {"description": "No token or invalid token"}
        }
      }
    },
    "/api/my-orders": {
      "get": {
        "summary": "Orders of the signed-in user, newest first",
        "security": [{"bearer": []}],
        "responses": {
          "200": {"description": "Orders", "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/MyOrder"}}}}},
          "401": {"description": "No token or invalid token"}
        }
      }
    }
  }
}`
