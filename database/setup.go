package database

// SetupSQL provisions the schema by hand when automatic migration is disabled.
// It is also returned to clients that hit a missing relation so an operator can
// run it and reload.
const SetupSQL = `-- ========== PART 1: ACCOUNTS AND PROFILES ==========
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS public.users (
  id uuid NOT NULL DEFAULT gen_random_uuid() PRIMARY KEY,
  email text NOT NULL UNIQUE,
  password text NOT NULL,
  email_verified boolean DEFAULT false,
  verification_code varchar(6),
  role varchar(50) DEFAULT 'user',
  created_at timestamptz,
  updated_at timestamptz
);

CREATE TABLE IF NOT EXISTS public.refresh_tokens (
  id uuid NOT NULL DEFAULT gen_random_uuid() PRIMARY KEY,
  token_id text NOT NULL UNIQUE,
  user_id uuid NOT NULL REFERENCES public.users(id) ON DELETE CASCADE,
  revoked boolean DEFAULT false,
  expires_at timestamptz NOT NULL,
  created_at timestamptz
);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON public.refresh_tokens (user_id);
CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expires_at ON public.refresh_tokens (expires_at);

CREATE TABLE IF NOT EXISTS public.profiles (
  id uuid NOT NULL PRIMARY KEY REFERENCES public.users(id) ON DELETE CASCADE,
  first_name text,
  last_name text,
  email text,
  phone text,
  business_address text,
  created_at timestamptz,
  updated_at timestamptz
);

-- ========== PART 2: CUSTOM ORDERS ==========
CREATE TABLE IF NOT EXISTS public.orders (
  id uuid NOT NULL DEFAULT gen_random_uuid() PRIMARY KEY,
  user_id uuid NOT NULL REFERENCES public.users(id) ON DELETE CASCADE,
  date timestamptz NOT NULL,
  status varchar(20) NOT NULL DEFAULT 'Pending'
    CHECK (status IN ('Pending', 'Completed', 'Cancelled')),
  bag_type text NOT NULL,
  material text NOT NULL,
  width integer NOT NULL,
  height integer NOT NULL,
  color text NOT NULL,
  handle_type text NOT NULL,
  quantity integer NOT NULL,
  artwork_url text,
  artwork_name text,
  business_address text NOT NULL,
  total_price numeric NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_user_date ON public.orders (user_id, date DESC);

-- ========== PART 3: ARTWORK STORAGE ==========
-- Create the S3 bucket that holds artwork (default name "artworks") and make
-- objects publicly readable, e.g. with LocalStack:
--   awslocal s3 mb s3://artworks
--   awslocal s3api put-bucket-policy --bucket artworks --policy \
--     '{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":"*","Action":"s3:GetObject","Resource":"arn:aws:s3:::artworks/*"}]}'
-- Uploads are only issued for keys under the caller's own "{userId}/" prefix.
`
